package config

const (
	defaultLogFile           = "circulate.log"
	defaultLogLevel          = "info"
	defaultLogFileMaxSize    = 20
	defaultLogFileMaxBackups = 3
	defaultLogFileMaxAge     = 28
	defaultLogCompress       = false
	defaultData              = "/var/opt/circulate"
	defaultBackend           = "sqlite"
	defaultLoanPeriodDays    = 14
	defaultMaxRenewDays      = 14
	defaultFineRatePerDay    = 0.50
	defaultMaxFine           = 20.00
	defaultMaxBooksAllowed   = 5
	defaultSeedData          = true
	defaultVersion           = "0.1.0"
)

// Why use mapstructure instead of json: viper unmarshals through
// mapstructure, so json field tags would not be recognized.
// see: https://pkg.go.dev/github.com/mitchellh/mapstructure#hdr-Field_Tags
type Options struct {
	// LogFile is the file to write logs to
	LogFile string `mapstructure:"log_file"`
	// LogLevel is the level of logging to show
	LogLevel string `mapstructure:"log_level"`
	// LogFileMaxSize is the maximum size of the log file before it is rotated
	LogFileMaxSize int `mapstructure:"log_file_max_size"`
	// LogFileMaxBackups is the maximum number of log files to keep
	LogFileMaxBackups int `mapstructure:"log_file_max_backups"`
	// LogFileMaxAge is the maximum number of days to keep a log file
	LogFileMaxAge int `mapstructure:"log_file_max_age"`
	// LogCompress is whether or not to compress the log files
	LogCompress bool `mapstructure:"log_compress"`
	// Data is the directory to store data
	Data string `mapstructure:"data"`
	// DSN is the path of the sqlite database file
	DSN string `mapstructure:"dsn_uri"`
	// Backend selects the repository implementation: memory, file or sqlite
	Backend string `mapstructure:"backend"`
	// BookFile and UserFile are the flat-file store paths
	BookFile string `mapstructure:"book_file"`
	UserFile string `mapstructure:"user_file"`
	// LoanPeriodDays is the default borrowing period
	LoanPeriodDays int `mapstructure:"loan_period_days"`
	// MaxRenewDays is the longest extension a single renewal may add
	MaxRenewDays int `mapstructure:"max_renew_days"`
	// FineRatePerDay is the fine charged per overdue day
	FineRatePerDay float64 `mapstructure:"fine_rate_per_day"`
	// MaxFine is the ceiling on a single loan's fine
	MaxFine float64 `mapstructure:"max_fine"`
	// MaxBooksAllowed is the default member borrowing quota
	MaxBooksAllowed int `mapstructure:"max_books_allowed"`
	// SeedData controls whether empty repositories get default rows
	SeedData bool `mapstructure:"seed_data"`
	// Version is the application version
	Version string `mapstructure:"version"`
}

func GetDefaultOptions() *Options {
	Opts = &Options{
		LogFile:           defaultLogFile,
		LogLevel:          defaultLogLevel,
		LogFileMaxSize:    defaultLogFileMaxSize,
		LogFileMaxBackups: defaultLogFileMaxBackups,
		LogFileMaxAge:     defaultLogFileMaxAge,
		LogCompress:       defaultLogCompress,
		Data:              defaultData,
		Backend:           defaultBackend,
		LoanPeriodDays:    defaultLoanPeriodDays,
		MaxRenewDays:      defaultMaxRenewDays,
		FineRatePerDay:    defaultFineRatePerDay,
		MaxFine:           defaultMaxFine,
		MaxBooksAllowed:   defaultMaxBooksAllowed,
		SeedData:          defaultSeedData,
		Version:           defaultVersion,
	}
	return Opts
}
