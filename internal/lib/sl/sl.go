package sl

import "log/slog"

// Err wraps an error as a slog attribute.
func Err(err error) slog.Attr {
	return slog.Attr{
		Key:   "error",
		Value: slog.StringValue(err.Error()),
	}
}

// Module tags log records with the component that produced them.
func Module(name string) slog.Attr {
	return slog.Attr{
		Key:   "module",
		Value: slog.StringValue(name),
	}
}

// Secret logs a masked version of a sensitive value, keeping only the first
// few characters so records stay correlatable.
func Secret(key, value string) slog.Attr {
	masked := "****"
	if len(value) > 8 {
		masked = value[:4] + "****"
	}
	return slog.Attr{
		Key:   key,
		Value: slog.StringValue(masked),
	}
}
