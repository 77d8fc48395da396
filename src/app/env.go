package app

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	EnvDev  = "dev"
	EnvProd = "prod"
)

type envVars struct {
	Environment string `split_words:"true" default:"dev"`

	Workers      int    `split_words:"true" default:"8"`
	PoolSize     uint64 `split_words:"true" default:"64"`
	PageUniverse uint64 `split_words:"true" default:"512"`
	OpsPerWorker int    `split_words:"true" default:"10000"`

	// empty means an in-memory filesystem
	DataDir string `split_words:"true" default:""`
}

func mustLoadEnv(configPath string) envVars {
	var err error
	if configPath != "" {
		err = godotenv.Load(configPath)
	} else {
		err = godotenv.Load()
	}

	if err != nil && !os.IsNotExist(err) {
		panic(err)
	}

	var env envVars
	envconfig.MustProcess("PAGECACHE", &env)

	if env.Environment != EnvDev && env.Environment != EnvProd {
		panic("environment must be either dev or prod")
	}

	if env.Workers < 1 {
		panic("workers must be at least 1")
	}

	if env.PoolSize < 1 {
		panic("pool size must be at least 1")
	}

	// each worker pins at most one page at a time; keeping workers within
	// the pool size guarantees a victim is always available
	if uint64(env.Workers) > env.PoolSize {
		panic("workers must not exceed pool size")
	}

	if env.PageUniverse < env.PoolSize {
		panic("page universe must be at least the pool size")
	}

	return env
}
