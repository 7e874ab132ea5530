package config

import (
	"fmt"
	"github.com/ilyakaznacheev/cleanenv"
	"log"
	"sync"
)

type Config struct {
	Env      string `yaml:"env" env-default:"local"`
	Telegram struct {
		ApiKey  string `yaml:"api_key" env-default:""`
		AdminId int64  `yaml:"admin_id" env-default:"0"`
		BotName string `yaml:"bot_name" env-default:"SchoolScanBot"`
		Enabled bool   `yaml:"enabled" env-default:"false"`
	} `yaml:"telegram"`
	WhatsApp struct {
		Enabled       bool   `yaml:"enabled" env-default:"false"`
		AccessToken   string `yaml:"access_token" env-default:""`
		VerifyToken   string `yaml:"verify_token" env-default:""`
		AppSecret     string `yaml:"app_secret" env-default:""`
		PhoneNumberID string `yaml:"phone_number_id" env-default:""`
	} `yaml:"whatsapp"`
	Mongo struct {
		Enabled  bool   `yaml:"enabled" env-default:"false"`
		Host     string `yaml:"host" env-default:"127.0.0.1"`
		Port     string `yaml:"port" env-default:"27017"`
		User     string `yaml:"user" env-default:"admin"`
		Password string `yaml:"password" env-default:"pass"`
		Database string `yaml:"database" env-default:""`
	} `yaml:"mongo"`
	Attendance struct {
		// Timezone is the IANA name of the single calendar used for every
		// day boundary; "Local" follows the host clock.
		Timezone     string `yaml:"timezone" env-default:"Local"`
		CutoffHour   int    `yaml:"cutoff_hour" env-default:"18"`
		CutoffMinute int    `yaml:"cutoff_minute" env-default:"30"`
		AutoCheckout bool   `yaml:"auto_checkout" env-default:"true"`
	} `yaml:"attendance"`
	Listen struct {
		BindIP string `yaml:"bind_ip" env-default:"127.0.0.1"`
		Port   string `yaml:"port" env-default:"9100"`
		ApiKey string `yaml:"key" env-default:""`
	} `yaml:"listen"`
}

var instance *Config
var once sync.Once

func MustLoad(path string) *Config {
	var err error
	once.Do(func() {
		instance = &Config{}
		if err = cleanenv.ReadConfig(path, instance); err != nil {
			desc, _ := cleanenv.GetDescription(instance, nil)
			err = fmt.Errorf("%s; %s", err, desc)
			instance = nil
			log.Fatal(err)
		}
	})
	return instance
}
