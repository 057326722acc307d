package schema

// Names used by the zoo events data set.
const (
	EventsIndex     = "idx_zew_events"
	EventsAlias     = "idxa_zew_events"
	EventsKeyPrefix = "zew:activities:"
)

// ZooEvents is the index over zoo activity documents.
func ZooEvents() Definition {
	return Definition{
		Name:     EventsIndex,
		Prefixes: []string{EventsKeyPrefix},
		Fields: []FieldMapping{
			{Path: "$.name", Alias: "event_name", Kind: Text, Phonetic: "dm:en"},
			{Path: "$.cost", Alias: "cost", Kind: Numeric, Sortable: true},
			{Path: "$.days.*", Alias: "days", Kind: Tag},
			{Path: "$.times.*.military", Alias: "times", Kind: Tag},
			{Path: "$.location", Alias: "location", Kind: Text},
		},
	}
}
