package selection

import (
	"reflect"
	"testing"
)

func minutes(m float64) *float64 {
	v := m * 60
	return &v
}

func ids(list []Candidate) []string {
	out := make([]string, 0, len(list))
	for _, c := range list {
		out = append(out, c.ID)
	}
	return out
}

func scenario() []Candidate {
	return []Candidate{
		{ID: "A", UploadDate: "20240101", Duration: minutes(10)},
		{ID: "B", UploadDate: "20240301", Duration: minutes(90), WasLive: true},
		{ID: "C", UploadDate: "20240201", Duration: minutes(30), IsLive: true},
		{ID: "", UploadDate: "20240401"},
		{ID: "D", UploadDate: "20240315"},
	}
}

func seconds(s float64) *float64 { return &s }

// octoberUploads has three live entries, two of them on the same day.
func octoberUploads() []Candidate {
	return []Candidate{
		{ID: "v1", UploadDate: "20251015"},
		{ID: "v2", UploadDate: "20251016", WasLive: true},
		{ID: "v3", UploadDate: "20251017", WasLive: true},
		{ID: "v4", UploadDate: "20251014"},
		{ID: "v5", UploadDate: "20251017", IsLive: true},
	}
}

func TestFilterOctoberUploads(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		want []string
	}{
		{"live only", Options{LiveOnly: true}, []string{"v3", "v5", "v2"}},
		{"max three with regular uploads", Options{MaxCount: 3}, []string{"v3", "v5", "v2"}},
		{"all", Options{}, []string{"v3", "v5", "v2", "v1", "v4"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Filter(octoberUploads(), tc.opts)
			if !reflect.DeepEqual(ids(got), tc.want) {
				t.Fatalf("Filter() = %v, want %v", ids(got), tc.want)
			}
			seenRegular := false
			for _, c := range got {
				if !c.Live() {
					seenRegular = true
				} else if seenRegular {
					t.Fatalf("live entry %s after a regular entry: %v", c.ID, ids(got))
				}
			}
		})
	}
}

func TestFilterThirtyMinuteLimit(t *testing.T) {
	candidates := []Candidate{
		{ID: "d600", Duration: seconds(600)},
		{ID: "d3600", Duration: seconds(3600)},
		{ID: "d7200", Duration: seconds(7200)},
		{ID: "d900", Duration: seconds(900)},
		{ID: "d1800", Duration: seconds(1800)},
	}
	got := Filter(candidates, Options{DurationLimitMinutes: 30})
	if want := []string{"d600", "d900", "d1800"}; !reflect.DeepEqual(ids(got), want) {
		t.Fatalf("Filter() = %v, want %v", ids(got), want)
	}
}

func TestFilterPrioritizesLive(t *testing.T) {
	got := Filter(scenario(), Options{DurationLimitMinutes: 60})
	if want := []string{"C", "D", "A"}; !reflect.DeepEqual(ids(got), want) {
		t.Fatalf("Filter() = %v, want %v", ids(got), want)
	}
}

func TestFilterLiveOnly(t *testing.T) {
	got := Filter(scenario(), Options{DurationLimitMinutes: 60, LiveOnly: true})
	if want := []string{"C"}; !reflect.DeepEqual(ids(got), want) {
		t.Fatalf("Filter() = %v, want %v", ids(got), want)
	}
}

func TestFilterWithoutDurationLimit(t *testing.T) {
	got := Filter(scenario(), Options{})
	if want := []string{"B", "C", "D", "A"}; !reflect.DeepEqual(ids(got), want) {
		t.Fatalf("Filter() = %v, want %v", ids(got), want)
	}
}

func TestFilterMaxCount(t *testing.T) {
	got := Filter(scenario(), Options{MaxCount: 2})
	if want := []string{"B", "C"}; !reflect.DeepEqual(ids(got), want) {
		t.Fatalf("Filter() = %v, want %v", ids(got), want)
	}
}

func TestFilterDurationLimitIsInclusive(t *testing.T) {
	got := Filter([]Candidate{
		{ID: "exact", Duration: minutes(60)},
		{ID: "over", Duration: minutes(60.01)},
	}, Options{DurationLimitMinutes: 60})
	if want := []string{"exact"}; !reflect.DeepEqual(ids(got), want) {
		t.Fatalf("Filter() = %v, want %v", ids(got), want)
	}
}

func TestFilterMissingDateSortsLast(t *testing.T) {
	got := Filter([]Candidate{
		{ID: "undated"},
		{ID: "old", UploadDate: "20200101"},
		{ID: "new", UploadDate: "20250101"},
	}, Options{})
	if want := []string{"new", "old", "undated"}; !reflect.DeepEqual(ids(got), want) {
		t.Fatalf("Filter() = %v, want %v", ids(got), want)
	}
}

func TestFilterIsStableForEqualDates(t *testing.T) {
	got := Filter([]Candidate{
		{ID: "first", UploadDate: "20240101"},
		{ID: "second", UploadDate: "20240101"},
	}, Options{})
	if want := []string{"first", "second"}; !reflect.DeepEqual(ids(got), want) {
		t.Fatalf("Filter() = %v, want %v", ids(got), want)
	}
}

func TestFilterDoesNotMutateInput(t *testing.T) {
	input := scenario()
	before := ids(input)
	_ = Filter(input, Options{DurationLimitMinutes: 60})
	if !reflect.DeepEqual(ids(input), before) {
		t.Fatalf("input reordered: %v", ids(input))
	}
}

func TestFilterEmpty(t *testing.T) {
	if got := Filter(nil, Options{MaxCount: 3}); len(got) != 0 {
		t.Fatalf("expected empty result, got %v", ids(got))
	}
}
