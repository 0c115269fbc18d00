package store

// TravelTime is a persisted walking-time estimate between two buildings.
type TravelTime struct {
	FromBuilding string
	ToBuilding   string
	Minutes      int32
	// UpdatedTs is the unix time the estimate was fetched.
	UpdatedTs int64
}

// FindTravelTime is the find condition for a travel time.
type FindTravelTime struct {
	FromBuilding string
	ToBuilding   string
	// MinUpdatedTs excludes estimates fetched before this unix time.
	MinUpdatedTs int64
}

// UpsertTravelTime is the upsert request for a travel time.
type UpsertTravelTime struct {
	FromBuilding string
	ToBuilding   string
	Minutes      int32
	UpdatedTs    int64
}

// DeleteTravelTime removes estimates fetched before OlderThanTs.
type DeleteTravelTime struct {
	OlderThanTs int64
}
