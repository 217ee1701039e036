package config

type App struct {
	Port        string `env:"APP_PORT" default:"8080"`
	DatabaseURL string `env:"DATABASE_URL,required"`
	JWTSecret   string `env:"JWT_SECRET,required"`
	Env         string `env:"APP_ENV" default:"dev"`

	BooksAPIURL string `env:"BOOKS_API_URL" default:"https://www.googleapis.com/books/v1/volumes"`

	APIKeyPrefix   string `env:"API_KEY_PREFIX"`
	APIKeyBytes    int    `env:"API_KEY_BYTES" default:"32"`
	APIKeyEncoding string `env:"API_KEY_ENCODING" default:"hex"`
	APIKeyPattern  string `env:"API_KEY_ALLOWED_REGEX"`
}
