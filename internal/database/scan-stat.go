package repository

import (
	"context"
	"fmt"
	"time"

	"SchoolScan/entity"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// BumpScanStat increments the scan counter for a device/location pair.
// Best-effort bookkeeping, never on the scan's critical path.
func (m *MongoDB) BumpScanStat(ctx context.Context, device, location string) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(scanStatCollection)

	filter := bson.D{{Key: "device_info", Value: device}, {Key: "scan_location", Value: location}}
	update := bson.M{
		"$set": bson.M{
			"device_info":   device,
			"scan_location": location,
			"last_scan":     time.Now(),
		},
		"$inc": bson.M{"scan_count": 1},
	}

	_, err = collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("mongodb upsert scan stat: %w", err)
	}
	return nil
}

func (m *MongoDB) GetAllScanStat(ctx context.Context) ([]entity.ScanStat, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(scanStatCollection)

	cursor, err := collection.Find(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("mongodb find scan stat: %w", err)
	}
	defer cursor.Close(ctx)

	var stat []entity.ScanStat
	if err = cursor.All(ctx, &stat); err != nil {
		return nil, fmt.Errorf("mongodb decode scan stat: %w", err)
	}

	return stat, nil
}
