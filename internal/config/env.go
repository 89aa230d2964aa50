package config

import (
	"os"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
)

type Config struct {
	AppName          string
	AppEnv           string
	AppPort          string
	BodyLimitMB      int
	RequestTimeout   time.Duration
	CORSAllowOrigins string

	RateLimitRPS   float64
	RateLimitBurst int

	ModelPath          string
	ModelMetadataPath  string
	OnnxRuntimeLibPath string
	ClassifierDebug    bool

	MQTTBroker         string
	MQTTClientID       string
	MQTTUsername       string
	MQTTPassword       string
	MQTTTopicDetection string
}

func Load(logger *logrus.Logger) *Config {
	return &Config{
		AppName:          getEnv("APP_NAME", "IR Person Classifier"),
		AppEnv:           getEnv("APP_ENV", "development"),
		AppPort:          getEnv("APP_PORT", "5001"),
		BodyLimitMB:      getEnvInt(logger, "BODY_LIMIT_MB", 50),
		RequestTimeout:   time.Duration(getEnvInt(logger, "REQUEST_TIMEOUT_SECONDS", 10)) * time.Second,
		CORSAllowOrigins: getEnv("CORS_ALLOW_ORIGINS", "*"),

		RateLimitRPS:   getEnvFloat(logger, "RATE_LIMIT_RPS", 50),
		RateLimitBurst: getEnvInt(logger, "RATE_LIMIT_BURST", 100),

		ModelPath:          getEnv("MODEL_PATH", "./models/model.onnx"),
		ModelMetadataPath:  getEnv("MODEL_METADATA_PATH", "./models/model_metadata.json"),
		OnnxRuntimeLibPath: getEnv("ONNXRUNTIME_LIB_PATH", ""),
		ClassifierDebug:    getEnvBool(logger, "CLASSIFIER_DEBUG", false),

		MQTTBroker:         getEnv("MQTT_BROKER", ""),
		MQTTClientID:       getEnv("MQTT_CLIENT_ID", ""),
		MQTTUsername:       getEnv("MQTT_USERNAME", ""),
		MQTTPassword:       getEnv("MQTT_PASSWORD", ""),
		MQTTTopicDetection: getEnv("MQTT_TOPIC_DETECTION", "ir/detection/{direction}"),
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(logger *logrus.Logger, key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	intValue, err := strconv.Atoi(value)
	if err != nil {
		logger.Warnf("failed to parse %s as int, using default: %v", key, err)
		return defaultValue
	}
	return intValue
}

func getEnvFloat(logger *logrus.Logger, key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	floatValue, err := strconv.ParseFloat(value, 64)
	if err != nil {
		logger.Warnf("failed to parse %s as float, using default: %v", key, err)
		return defaultValue
	}
	return floatValue
}

func getEnvBool(logger *logrus.Logger, key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	boolValue, err := strconv.ParseBool(value)
	if err != nil {
		logger.Warnf("failed to parse %s as bool, using default: %v", key, err)
		return defaultValue
	}
	return boolValue
}
