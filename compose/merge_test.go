package compose

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMerge_Semantics(t *testing.T) {
	testCases := []struct {
		name    string
		base    map[string]any
		overlay map[string]any
		want    map[string]any
	}{
		{
			name:    "mappings merge key by key",
			base:    map[string]any{"a": 1, "b": map[string]any{"c": 2, "d": 3}},
			overlay: map[string]any{"b": map[string]any{"c": 9}},
			want:    map[string]any{"a": 1, "b": map[string]any{"c": 9, "d": 3}},
		},
		{
			name:    "scalar replaces mapping",
			base:    map[string]any{"a": map[string]any{"b": 1}},
			overlay: map[string]any{"a": 5},
			want:    map[string]any{"a": 5},
		},
		{
			name:    "mapping replaces scalar",
			base:    map[string]any{"a": 5},
			overlay: map[string]any{"a": map[string]any{"b": 1}},
			want:    map[string]any{"a": map[string]any{"b": 1}},
		},
		{
			name:    "sequences replace wholesale",
			base:    map[string]any{"xs": []any{1, 2, 3}},
			overlay: map[string]any{"xs": []any{9}},
			want:    map[string]any{"xs": []any{9}},
		},
		{
			name:    "right wins even with null",
			base:    map[string]any{"a": 1},
			overlay: map[string]any{"a": nil},
			want:    map[string]any{"a": nil},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := Merge(tc.base, tc.overlay)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("merge mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMerge_DoesNotMutateInputs(t *testing.T) {
	base := map[string]any{"a": map[string]any{"b": 1}, "xs": []any{1, 2}}
	overlay := map[string]any{"a": map[string]any{"c": 2}}

	merged := Merge(base, overlay)
	merged["a"].(map[string]any)["b"] = 99
	merged["xs"].([]any)[0] = 99

	assert.Equal(t, 1, base["a"].(map[string]any)["b"])
	assert.Equal(t, 1, base["xs"].([]any)[0])
	assert.Equal(t, map[string]any{"c": 2}, overlay["a"])
}

func TestApply_OverridesAndInsertions(t *testing.T) {
	base := map[string]any{"a": 1, "b": map[string]any{"c": 2}}

	set, err := ParseOverrides([]string{"b.c=3", "+d=4"})
	require.NoError(t, err)

	got, err := Apply(base, set)
	require.NoError(t, err)

	want := map[string]any{"a": 1, "b": map[string]any{"c": 3}, "d": 4}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("apply mismatch (-want +got):\n%s", diff)
	}
	// The base tree is untouched.
	assert.Equal(t, map[string]any{"a": 1, "b": map[string]any{"c": 2}}, base)
}

func TestApply_LastEntryWins(t *testing.T) {
	base := map[string]any{"x": 0}

	// One batch and two sequential applications agree.
	batch, err := ParseOverrides([]string{"x=1", "x=2"})
	require.NoError(t, err)
	fromBatch, err := Apply(base, batch)
	require.NoError(t, err)

	first, err := ParseOverrides([]string{"x=1"})
	require.NoError(t, err)
	second, err := ParseOverrides([]string{"x=2"})
	require.NoError(t, err)
	intermediate, err := Apply(base, first)
	require.NoError(t, err)
	sequential, err := Apply(intermediate, second)
	require.NoError(t, err)

	assert.Equal(t, map[string]any{"x": 2}, fromBatch)
	assert.Equal(t, fromBatch, sequential)
}

func TestApply_EmptySetIsIdentity(t *testing.T) {
	base := map[string]any{"a": 1, "b": map[string]any{"c": []any{1, 2}}}
	got, err := Apply(base, nil)
	require.NoError(t, err)
	assert.Equal(t, base, got)
}

func TestApply_MissingKey(t *testing.T) {
	base := map[string]any{"a": 1, "b": map[string]any{"c": 2}}

	testCases := []struct {
		name     string
		entry    string
		wantPath string
	}{
		{"absent top-level key", "d=4", "d"},
		{"absent nested key", "b.x=1", "b.x"},
		{"absent intermediate", "z.c=1", "z"},
		{"descends through scalar", "a.b=1", "a.b"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			set, err := ParseOverrides([]string{tc.entry})
			require.NoError(t, err)

			_, err = Apply(base, set)
			var missing *MissingKeyError
			require.ErrorAs(t, err, &missing)
			assert.Equal(t, tc.wantPath, missing.Path)
		})
	}
}

func TestApply_ForcedInsertionCreatesIntermediates(t *testing.T) {
	base := map[string]any{"a": 1}

	set, err := ParseOverrides([]string{"+x.y.z=1", "+a.b=2"})
	require.NoError(t, err)

	got, err := Apply(base, set)
	require.NoError(t, err)

	want := map[string]any{
		"a": map[string]any{"b": 2},
		"x": map[string]any{"y": map[string]any{"z": 1}},
	}
	assert.Equal(t, want, got)
}
