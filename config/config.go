package config

import (
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Data     DataConfig
	Kafka    KafkaConfig
	Train    TrainConfig
	Report   ReportConfig
	Health   HealthConfig
	Timezone string
}

type ServerConfig struct {
	Port string
}

type DataConfig struct {
	Dir          string
	FeaturesPath string
	ModelPath    string
}

type KafkaConfig struct {
	Bootstrap   string
	GroupID     string
	LogonTopic  string
	HTTPTopic   string
	DeviceTopic string
}

type TrainConfig struct {
	Trees         int
	SampleSize    int
	Contamination float64
	Seed          int64
}

type ReportConfig struct {
	MaxRows int
}

type HealthConfig struct {
	WarnMB float64
	CritMB float64
}

func LoadFromEnv(service string) *Config {
	viper.AutomaticEnv()

	viper.SetDefault("DATA_DIR", "data")
	viper.SetDefault("FEATURES_PATH", "data/features.csv")
	viper.SetDefault("MODEL_PATH", "model_store/iforest.model")
	viper.SetDefault("TIMEZONE", "Asia/Seoul")

	cfg := &Config{
		Data: DataConfig{
			Dir:          viper.GetString("DATA_DIR"),
			FeaturesPath: viper.GetString("FEATURES_PATH"),
			ModelPath:    viper.GetString("MODEL_PATH"),
		},
		Timezone: viper.GetString("TIMEZONE"),
	}

	if service == "serve" {
		viper.SetDefault("SERVE_PORT", ":48086")
		viper.SetDefault("REPORT_MAX_ROWS", 50)
		viper.SetDefault("HEALTH_WARN_MB", 256.0)
		viper.SetDefault("HEALTH_CRIT_MB", 512.0)

		cfg.Server.Port = viper.GetString("SERVE_PORT")
		cfg.Report = ReportConfig{MaxRows: viper.GetInt("REPORT_MAX_ROWS")}
		cfg.Health = HealthConfig{
			WarnMB: viper.GetFloat64("HEALTH_WARN_MB"),
			CritMB: viper.GetFloat64("HEALTH_CRIT_MB"),
		}
	} else if service == "train" {
		viper.SetDefault("TRAIN_TREES", 100)
		viper.SetDefault("TRAIN_SAMPLE_SIZE", 256)
		viper.SetDefault("TRAIN_CONTAMINATION", 0.05)
		viper.SetDefault("TRAIN_SEED", 42)

		cfg.Train = TrainConfig{
			Trees:         viper.GetInt("TRAIN_TREES"),
			SampleSize:    viper.GetInt("TRAIN_SAMPLE_SIZE"),
			Contamination: viper.GetFloat64("TRAIN_CONTAMINATION"),
			Seed:          viper.GetInt64("TRAIN_SEED"),
		}
	} else if service == "ingest" {
		viper.SetDefault("KAFKA_BOOTSTRAP_SERVERS", "127.0.0.1:9092")
		viper.SetDefault("KAFKA_CONSUMER_GROUP_PREFIX", "insider")
		viper.SetDefault("KAFKA_LOGON_TOPIC", "MESSAGE_LOGON")
		viper.SetDefault("KAFKA_HTTP_TOPIC", "MESSAGE_HTTP")
		viper.SetDefault("KAFKA_DEVICE_TOPIC", "MESSAGE_DEVICE")

		cfg.Kafka = KafkaConfig{
			Bootstrap:   viper.GetString("KAFKA_BOOTSTRAP_SERVERS"),
			GroupID:     viper.GetString("KAFKA_CONSUMER_GROUP_PREFIX") + "-ingest",
			LogonTopic:  viper.GetString("KAFKA_LOGON_TOPIC"),
			HTTPTopic:   viper.GetString("KAFKA_HTTP_TOPIC"),
			DeviceTopic: viper.GetString("KAFKA_DEVICE_TOPIC"),
		}
	}

	return cfg
}
