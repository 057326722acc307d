package result

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDocument_JSON(t *testing.T) {
	d := Document{
		Key: "zew:activities:gf",
		Fields: []Field{
			{Name: "event_name", Values: []string{"Gorilla Feeding"}},
			{Name: "cost", Raw: "0", Values: []string{"0"}, JSON: true},
			{Name: "days", Raw: `["Mon","Tue"]`, Values: []string{`["Mon","Tue"]`}, JSON: true},
			{Name: "$.description"},
			{Name: "first_event_time", Values: []string{"8 AM", "3 PM", "10 PM"}, Multi: true},
			{Name: "military", Raw: `["0800",null]`, Values: []string{"0800", "null"}, Multi: true, JSON: true},
		},
	}

	got, err := d.JSON()
	require.NoError(t, err)
	require.JSONEq(t, `{
		"event_name": "Gorilla Feeding",
		"cost": 0,
		"days": ["Mon","Tue"],
		"$.description": "",
		"first_event_time": ["8 AM","3 PM","10 PM"],
		"military": ["0800", null]
	}`, got)
}

func TestDocument_JSONKeepsNumericLookingStrings(t *testing.T) {
	d := Document{Fields: []Field{
		{Name: "event_name", Raw: "1500", Values: []string{"1500"}},
		{Name: "code", Raw: "0800", Values: []string{"0800"}},
		{Name: "flag", Raw: "true", Values: []string{"true"}},
		{Name: "slots", Values: []string{"0800", "1500"}, Multi: true},
	}}

	got, err := d.JSON()
	require.NoError(t, err)
	require.Equal(t, `{"event_name":"1500","code":"0800","flag":"true","slots":["0800","1500"]}`, got)
}

func TestDocument_JSONRejectsInvalidRaw(t *testing.T) {
	d := Document{Fields: []Field{{Name: "x", Raw: "{oops", JSON: true}}}
	_, err := d.JSON()
	require.Error(t, err)
}

func TestDocument_Get(t *testing.T) {
	d := Document{Fields: []Field{{Name: "location", Values: []string{"Gorilla House South"}}}}

	f, ok := d.Get("location")
	require.True(t, ok)
	require.Equal(t, "Gorilla House South", f.Value())
	require.Equal(t, "Gorilla House South", d.Value("location"))

	_, ok = d.Get("missing")
	require.False(t, ok)
	require.Empty(t, d.Value("missing"))
}

func TestRow_Accessors(t *testing.T) {
	r := Row{"event_match_count": "1", "avg_cost": "12.5"}

	n, err := r.Int("event_match_count")
	require.NoError(t, err)
	require.Equal(t, int64(1), n)

	f, err := r.Float("avg_cost")
	require.NoError(t, err)
	require.InDelta(t, 12.5, f, 1e-9)

	_, err = r.Int("missing")
	require.Error(t, err)
}

func TestPage_Keys(t *testing.T) {
	p := Page{Total: 5, Documents: []Document{{Key: "a"}, {Key: "b"}}}
	require.Equal(t, []string{"a", "b"}, p.Keys())
}
