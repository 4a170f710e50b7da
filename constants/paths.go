package constants

// Default store prefixes, mirroring the catalogue bucket layout. All of them
// are overridable through configuration.
const (
	RawRoot       = "01_raw_catalogues/modules"
	CandidateRoot = "02_candidates/modules"
	ReviewRoot    = "02_candidates/_reviews"
	MasterRoot    = "03_masterdata/modules"
	ReleaseRoot   = "04_releases"
)
