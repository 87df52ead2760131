package kvdb

type DB interface {
	Set(key string, value string) error
	SetMany(values map[string]string) error
	Get(key string) (string, error)
	Delete(key string) error
	Count() (int, error)
	Close() error
}
