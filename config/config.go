package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
)

const (
	HistoryMemory   = "memory"
	HistoryDynamoDB = "dynamodb"

	CompletionOpenAI     = "openai"
	CompletionCompatible = "compatible"

	QuestionsMongo    = "mongo"
	QuestionsPostgres = "postgres"
)

// Config holds every setting the server reads from the environment.
type Config struct {
	Port    string
	GinMode string

	// Completion service
	CompletionProvider    string
	CompletionAPIKey      string
	CompletionBaseURL     string
	CompletionModel       string
	CompletionTemperature float32

	// Conversation history
	HistoryBackend   string
	AWSRegion        string
	DynamoDBEndpoint string
	DynamoDBTable    string

	// Question batches
	QuestionBackend string
	MongoURI        string
	DBName          string
	PostgresURI     string

	// Logging
	LogFile  string
	LogLevel slog.Level
}

// Load reads configuration from environment variables.
func Load() Config {
	provider := strings.ToLower(getEnv("COMPLETION_PROVIDER", CompletionOpenAI))

	apiKey := os.Getenv("COMPLETION_API_KEY")
	if apiKey == "" {
		apiKey = GetOpenAIKey()
	}

	return Config{
		Port:    getEnv("PORT", "5000"),
		GinMode: getEnv("GIN_MODE", "release"),

		CompletionProvider:    provider,
		CompletionAPIKey:      apiKey,
		CompletionBaseURL:     os.Getenv("COMPLETION_BASE_URL"),
		CompletionModel:       getEnv("COMPLETION_MODEL", "gpt-3.5-turbo"),
		CompletionTemperature: parseFloat32(os.Getenv("COMPLETION_TEMPERATURE"), 0.7),

		HistoryBackend:   strings.ToLower(getEnv("HISTORY_BACKEND", HistoryMemory)),
		AWSRegion:        getEnv("AWS_REGION", "us-east-1"),
		DynamoDBEndpoint: os.Getenv("DYNAMODB_ENDPOINT"),
		DynamoDBTable:    getEnv("DYNAMODB_TABLE", "Conversations"),

		QuestionBackend: strings.ToLower(getEnv("QUESTION_BACKEND", QuestionsMongo)),
		MongoURI:        getEnv("MONGO_URI", "mongodb://localhost:27017"),
		DBName:          getEnv("DB_NAME", "test"),
		PostgresURI:     os.Getenv("POSTGRES_URI"),

		LogFile:  os.Getenv("LOG_FILE"),
		LogLevel: parseLogLevel(getEnv("LOG_LEVEL", "INFO")),
	}
}

func GetOpenAIKey() string {
	return os.Getenv("OPENAI_API_KEY")
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func parseFloat32(s string, def float32) float32 {
	if s == "" {
		return def
	}
	f, err := strconv.ParseFloat(s, 32)
	if err != nil {
		return def
	}
	return float32(f)
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
