package env

import (
	"context"
	"os"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	DebugHTTP bool   `env:"LITECACHE_DEBUG_HTTP"`
	LogLevel  string `env:"LITECACHE_LOG_LEVEL,default=info"`

	// ReadBufferSize bounds the size of a single client message
	ReadBufferSize int `env:"LITECACHE_READ_BUFFER_SIZE,default=4096"`

	// NumListeners of 0 means one per CPU
	NumListeners int  `env:"LITECACHE_NUM_LISTENERS,default=0"`
	Reuseport    bool `env:"LITECACHE_REUSEPORT,default=true"`
}

// LoadConfig reads the config from the environment, after loading
// .env.local if there is one.
func LoadConfig(ctx context.Context) (*Config, error) {
	return LoadConfigFrom(ctx, ".env.local")
}

func LoadConfigFrom(ctx context.Context, envFiles ...string) (*Config, error) {
	config := Config{}

	for _, envFile := range envFiles {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return nil, err
		}
	}

	if err := envconfig.Process(ctx, &config); err != nil {
		return nil, err
	}

	return &config, nil
}
