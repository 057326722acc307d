// Package activity is the zoo event document stored under zew:activities:*.
package activity

// DaysOfWeek in the order documents list them.
var DaysOfWeek = []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// Time is one scheduled slot. Either side may be null in stored documents.
type Time struct {
	Military *string `json:"military"`
	Civilian *string `json:"civilian"`
}

// Host is a contact person for an event.
type Host struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

// ResponsibleParties lists the event hosts.
type ResponsibleParties struct {
	NumberOfContacts int    `json:"number_of_contacts"`
	Hosts            []Host `json:"hosts"`
}

// Activity is a single zoo event.
type Activity struct {
	Name               string             `json:"name"`
	Cost               float64            `json:"cost"`
	Location           string             `json:"location"`
	Days               []string           `json:"days"`
	Times              []Time             `json:"times"`
	ResponsibleParties ResponsibleParties `json:"responsible-parties"`
	Description        string             `json:"description,omitempty"`
}

// Key returns the storage key of a document id under prefix.
func Key(prefix, id string) string {
	return prefix + id
}

func strPtr(s string) *string { return &s }

// Slot builds a Time with both representations set.
func Slot(military, civilian string) Time {
	return Time{Military: strPtr(military), Civilian: strPtr(civilian)}
}

// Fixture is a hand-written document with a stable id.
type Fixture struct {
	ID       string
	Activity Activity
}

// Fixtures returns the two reference documents used by the sample queries.
func Fixtures() []Fixture {
	return []Fixture{
		{ID: "gf", Activity: GorillaFeeding()},
		{ID: "bl", Activity: BonoboLecture()},
	}
}

// GorillaFeeding runs daily, is free, and has a slot without a military time.
func GorillaFeeding() Activity {
	return Activity{
		Name:     "Gorilla Feeding",
		Cost:     0,
		Location: "Gorilla House South",
		Days:     append([]string(nil), DaysOfWeek...),
		Times: []Time{
			Slot("0800", "8 AM"),
			Slot("1500", "3 PM"),
			{Military: nil, Civilian: strPtr("10 PM")},
		},
		ResponsibleParties: ResponsibleParties{
			NumberOfContacts: 2,
			Hosts: []Host{
				{Name: "Duncan Mills", Phone: "715-876-5522", Email: "dmilla@zew.org"},
				{Name: "Xiria Andrus", Phone: "815-336-5598", Email: "xiriaa@zew.org"},
			},
		},
	}
}

// BonoboLecture runs Monday and Thursday and costs 10.
func BonoboLecture() Activity {
	return Activity{
		Name:     "Bonobo Lecture",
		Cost:     10,
		Location: "Mammalian Lecture Theater",
		Days:     []string{DaysOfWeek[0], DaysOfWeek[3]},
		Times:    []Time{Slot("1100", "11 AM")},
		ResponsibleParties: ResponsibleParties{
			NumberOfContacts: 1,
			Hosts: []Host{
				{Name: "Dr. Clarissa Gumali", Phone: "715-322-5992", Email: "cgumali@zew.org"},
			},
		},
	}
}
