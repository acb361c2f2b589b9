package cache

// Option applies a configuration option to the Store.
type Option func(*Store)

// WithVersion sets the initial tag of a partition.
func WithVersion(p Partition, tag string) Option {
	return func(s *Store) {
		if tag != "" {
			s.versions[p] = tag
		}
	}
}
