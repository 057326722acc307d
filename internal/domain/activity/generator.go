package activity

import (
	"fmt"
	"math/rand/v2"
	"strings"
)

var (
	activityTypes = []string{"Feeding", "Training", "Live Show", "Lecture", "Documentary", "Petting", "Ride"}
	locationTypes = []string{"House", "Habitat", "Theater", "Lecture Hall", "Area"}
	directions    = []string{"North", "South", "East", "West"}
	costsOverZero = []float64{2, 5, 10, 25}
	animalSpecies = []string{
		"Lion", "Tiger", "Elephant", "Giant Panda", "Gorilla", "Giraffe", "Polar Bear", "Hippo",
		"Cheeta", "Zebra", "Meerkat", "Penguin", "Kangaroo", "Flamingo", "Koala", "Chimpanzee",
		"Llama", "Green Anaconda", "Hyena", "Bonobo", "Alligator", "Orangutan",
	}
	militaryTimes = []string{
		"0800", "0900", "1000", "1100", "1130", "1200", "1230", "1300", "1330", "1400",
		"1430", "1500", "1600", "1700", "1800", "1900", "2000", "2030", "2100", "2200",
	}
	civilianTimes = []string{
		"8 AM", "9 AM", "10 AM", "11 AM", "11:30 AM", "12 Noon", "12:30 PM", "1:00 PM", "1:30 PM", "2:00 PM",
		"2:30 PM", "3:00 PM", "4:00 PM", "5:00 PM", "6:00 PM", "7:00 PM", "8:00 PM", "8:30 PM", "9:00 PM", "10:00 PM",
	}
	firstNames = []string{
		"Amara", "Bruno", "Celia", "Dmitri", "Elena", "Farid", "Grace", "Hiro", "Ines", "Jonah",
		"Kalani", "Luis", "Maya", "Nils", "Olga", "Pavel", "Quinn", "Rosa", "Sami", "Tara",
	}
	lastNames = []string{
		"Abbott", "Baker", "Castillo", "Dorsey", "Eklund", "Fischer", "Garcia", "Huang", "Ivanova", "Jensen",
		"Kowalski", "Lindqvist", "Moreau", "Nakamura", "Okafor", "Petrov", "Quintero", "Rossi", "Silva", "Tanaka",
	}
)

// Generator produces fake activities from its own random source, so
// concurrent generators never share state.
type Generator struct {
	r *rand.Rand
}

// NewGenerator wraps r. A nil r gets a randomly seeded PCG source.
func NewGenerator(r *rand.Rand) *Generator {
	if r == nil {
		r = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Generator{r: r}
}

// NewSeededGenerator is deterministic for a given seed.
func NewSeededGenerator(seed uint64) *Generator {
	return NewGenerator(rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)))
}

// Next returns a new random activity. Every activity has three time slots,
// the last one all null, 1 to 3 hosts, and a subset of the week days.
func (g *Generator) Next() Activity {
	v := g.r.IntN(111)
	species := animalSpecies[v%len(animalSpecies)]

	a := Activity{
		Name:     species + " " + activityTypes[v%len(activityTypes)],
		Location: species + " " + locationTypes[g.r.IntN(111)%len(locationTypes)] + " " + directions[g.r.IntN(111)%len(directions)],
	}
	if g.r.IntN(3) <= 1 {
		a.Cost = costsOverZero[g.r.IntN(111)%len(costsOverZero)]
	}

	v += g.r.IntN(111)
	first := Slot(militaryTimes[v%len(militaryTimes)], civilianTimes[v%len(civilianTimes)])
	v += 3
	second := Slot(militaryTimes[v%len(militaryTimes)], civilianTimes[v%len(civilianTimes)])
	a.Times = []Time{first, second, {}}

	a.Days = g.days()

	contacts := g.r.IntN(111)%3 + 1
	a.ResponsibleParties.NumberOfContacts = contacts
	for range contacts {
		a.ResponsibleParties.Hosts = append(a.ResponsibleParties.Hosts, g.host())
	}
	return a
}

// days starts from the full week and removes every other remaining entry
// beginning at a random index.
func (g *Generator) days() []string {
	days := append([]string(nil), DaysOfWeek...)
	for i := g.r.IntN(111) % len(DaysOfWeek); i < len(DaysOfWeek); i += 2 {
		if i < len(days) {
			days = append(days[:i], days[i+1:]...)
		}
	}
	return days
}

func (g *Generator) host() Host {
	first := firstNames[g.r.IntN(len(firstNames))]
	last := lastNames[g.r.IntN(len(lastNames))]
	return Host{
		Name:  first + " " + last,
		Phone: fmt.Sprintf("%03d-%03d-%04d", 200+g.r.IntN(800), g.r.IntN(1000), g.r.IntN(10000)),
		Email: strings.ToLower(first) + "@zew.org",
	}
}
