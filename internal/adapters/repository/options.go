package repository

type sqlConfig struct {
	maxOpenConns int
	maxIdleConns int
}

// SQLOption applies a configuration option to NewSQLStore.
type SQLOption func(*sqlConfig)

// WithMaxOpenConns sets the connection pool's upper bound. sqlite keeps
// the default of 1 because it does not support multiple writers.
func WithMaxOpenConns(n int) SQLOption {
	return func(c *sqlConfig) {
		if n > 0 {
			c.maxOpenConns = n
		}
	}
}

// WithMaxIdleConns sets the number of idle connections retained.
func WithMaxIdleConns(n int) SQLOption {
	return func(c *sqlConfig) {
		if n > 0 {
			c.maxIdleConns = n
		}
	}
}
