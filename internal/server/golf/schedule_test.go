package golf

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	got, err := Decode("1,2|3,4\n1,3|2,4")
	require.NoError(t, err)

	want := Schedule{
		{{1, 2}, {3, 4}},
		{{1, 3}, {2, 4}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Decode() mismatch (-want +got):\n%s", diff)
	}
}

func TestDecode_ToleratesSpacesAndCRLF(t *testing.T) {
	got, err := Decode("1, 2 | 3,4\r\n1,3|2,4\r")
	require.NoError(t, err)

	want := Schedule{
		{{1, 2}, {3, 4}},
		{{1, 3}, {2, 4}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Decode() mismatch (-want +got):\n%s", diff)
	}
}

func TestDecode_FormatErrors(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		round int
		group int
	}{
		{"empty text", "", 1, 1},
		{"letter", "1,2|3,x", 1, 2},
		{"trailing group separator", "1,2|3,4\n1,3|", 2, 2},
		{"empty player", "1,,2|3,4", 1, 1},
		{"trailing newline", "1,2|3,4\n", 2, 1},
		{"float", "1.5,2|3,4", 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.text)
			var fe *FormatError
			require.True(t, errors.As(err, &fe), "expected FormatError, got %v", err)
			assert.Equal(t, tt.round, fe.Round)
			assert.Equal(t, tt.group, fe.Group)

			var ve *ValidationError
			assert.False(t, errors.As(err, &ve), "syntax errors are not validation errors")
		})
	}
}

func TestEncode(t *testing.T) {
	s := Schedule{
		{{1, 2}, {3, 4}},
		{{1, 3}, {2, 4}},
	}
	assert.Equal(t, "1,2|3,4\n1,3|2,4", Encode(s))
}

func TestCodec_RoundTrip(t *testing.T) {
	schedules := []Schedule{
		twoRoundSchedule(2, 2),
		twoRoundSchedule(5, 4),
		twoRoundSchedule(8, 4),
		{{{0, -1, 7}}},
	}

	for _, s := range schedules {
		got, err := Decode(Encode(s))
		require.NoError(t, err)
		if diff := cmp.Diff(s, got); diff != "" {
			t.Errorf("round trip mismatch (-want +got):\n%s", diff)
		}
	}
}

func TestSchedule_Normalise(t *testing.T) {
	s := Schedule{
		{{4, 3}, {2, 1}},
		{{4, 2}, {3, 1}},
	}
	want := Schedule{
		{{1, 2}, {3, 4}},
		{{1, 3}, {2, 4}},
	}
	if diff := cmp.Diff(want, s.Normalise()); diff != "" {
		t.Errorf("Normalise() mismatch (-want +got):\n%s", diff)
	}
	// input untouched
	assert.Equal(t, Group{4, 3}, s[0][0])
}

func TestSchedule_NumPlayers(t *testing.T) {
	assert.Equal(t, 20, twoRoundSchedule(5, 4).NumPlayers())
	assert.Equal(t, 0, Schedule{}.NumPlayers())
}
