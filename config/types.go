package config

type AppConfig struct {
	CSVPath     string `yaml:"csv_path" env:"SENTINELA_CSV_PATH" env-default:"data/crimes_mg.csv"`
	DBDriver    string `yaml:"db_driver" env:"SENTINELA_DB_DRIVER" env-default:"sqlite"`
	DBURL       string `yaml:"db_url" env:"SENTINELA_DB_URL" env-default:"file:data/sentinela.db"`
	TopN        int    `yaml:"top_n" env:"SENTINELA_TOP_N" env-default:"10"`
	HistoryPath string `yaml:"history_path" env:"SENTINELA_HISTORY_PATH" env-default:".sentinela_history"`
	LogLevel    string `yaml:"log_level" env:"SENTINELA_LOG_LEVEL" env-default:"info"`
}
