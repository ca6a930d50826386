package params

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type API struct {
	Listen string // HTTP listen address
}

type Node struct {
	DataDir string // pebble audit store location
	LogFile string // structured log destination ("" = console only)
	// DevFaucet exposes the in-memory ledger's mint/approve endpoints so a
	// devnet node is usable without external token contracts. Never enable
	// against a real ledger.
	DevFaucet bool
}

type Config struct {
	API  API
	Node Node
}

func Default() Config {
	return Config{
		API:  API{Listen: ":8080"},
		Node: Node{DataDir: "data/engine.db", LogFile: "data/dexd.log", DevFaucet: true},
	}
}

// LoadFromEnv loads configuration from a .env file (if present) and
// environment variables. Priority: ENV > .env file > defaults.
func LoadFromEnv(envPath string) Config {
	cfg := Default()

	if envPath != "" {
		_ = godotenv.Load(envPath)
	} else {
		_ = godotenv.Load()
	}

	if v := os.Getenv("API_LISTEN"); v != "" {
		cfg.API.Listen = v
	}
	if v := os.Getenv("DATA_DIR"); v != "" {
		cfg.Node.DataDir = v
	}
	if v := os.Getenv("LOG_FILE"); v != "" {
		cfg.Node.LogFile = v
	}
	if v := os.Getenv("DEV_FAUCET"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Node.DevFaucet = b
		}
	}
	return cfg
}
