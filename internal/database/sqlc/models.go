package sqldb

type Fingerprint struct {
	Path        string
	ModTimeNs   int64
	UpdatedAtNs int64
}
