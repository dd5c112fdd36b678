package profile_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/PixPMusic/ampswitcher/internal/profile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreRoundTrip(t *testing.T) {
	store := profile.NewStore(t.TempDir())

	tests := []struct {
		name string
		p    *profile.Profile
	}{
		{"empty", &profile.Profile{Name: "Empty", Channel: 0, Buttons: []profile.ButtonSpec{}}},
		{"template", profile.Template()},
		{"mixed", &profile.Profile{
			Name:    "Live set",
			Channel: 16,
			Buttons: []profile.ButtonSpec{
				{Order: 2, Name: "lead", Color: "#ff0000", ProgramChange: profile.Int(3)},
				{Order: 0, Name: "clean", ProgramChange: profile.Int(0), CCNumber: profile.Int(20), CCValue: profile.Int(0)},
				{Order: 1, Name: "label only"},
			},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			file := tt.name + ".json"
			require.NoError(t, store.Save(file, tt.p))

			loaded, err := store.Load(file)
			require.NoError(t, err)
			assert.Equal(t, tt.p, loaded)
		})
	}
}

func TestLoadMissingReturnsDefault(t *testing.T) {
	store := profile.NewStore(t.TempDir())

	p, err := store.Load("nope.json")
	require.ErrorIs(t, err, profile.ErrProfileNotFound)
	assert.NotErrorIs(t, err, profile.ErrProfileInvalid)
	assert.Equal(t, &profile.Profile{Name: "New Profile", Channel: 0, Buttons: []profile.ButtonSpec{}}, p)
}

func TestLoadInvalid(t *testing.T) {
	store := profile.NewStore(t.TempDir())
	require.NoError(t, store.EnsureStorage())

	tests := []struct {
		name    string
		content string
	}{
		{"not json", "this is not json"},
		{"truncated", `{"name": "x", "buttons": [`},
		{"channel out of range", `{"name": "x", "channel": 17, "buttons": []}`},
		{"program out of range", `{"name": "x", "channel": 0, "buttons": [{"order": 0, "name": "b", "program_change": 128}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, os.WriteFile(filepath.Join(store.Dir(), "bad.json"), []byte(tt.content), 0644))

			p, err := store.Load("bad.json")
			require.ErrorIs(t, err, profile.ErrProfileInvalid)
			assert.NotErrorIs(t, err, profile.ErrProfileNotFound)
			assert.Nil(t, p)
		})
	}
}

func TestLoadNullButtons(t *testing.T) {
	store := profile.NewStore(t.TempDir())
	require.NoError(t, store.EnsureStorage())
	require.NoError(t, os.WriteFile(filepath.Join(store.Dir(), "p.json"), []byte(`{"name": "x", "channel": 1}`), 0644))

	p, err := store.Load("p.json")
	require.NoError(t, err)
	assert.NotNil(t, p.Buttons)
	assert.Empty(t, p.Buttons)
}

func TestSaveIsIndented(t *testing.T) {
	store := profile.NewStore(t.TempDir())
	require.NoError(t, store.Save("t.json", profile.Template()))

	data, err := os.ReadFile(filepath.Join(store.Dir(), "t.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "\n    \"name\": \"Template\"")
}

func TestSaveSurfacesIOFailure(t *testing.T) {
	base := t.TempDir()
	// a regular file where the profiles directory should be
	require.NoError(t, os.WriteFile(filepath.Join(base, profile.DirName), []byte("x"), 0644))
	store := profile.NewStore(base)

	err := store.Save("a.json", profile.Template())
	assert.ErrorIs(t, err, profile.ErrIO)
}

func TestInvalidNames(t *testing.T) {
	store := profile.NewStore(t.TempDir())
	for _, name := range []string{"", ".", "..", "../x.json", "a/b.json"} {
		_, err := store.Load(name)
		assert.ErrorIs(t, err, profile.ErrInvalidName, "name %q", name)
		assert.ErrorIs(t, store.Save(name, profile.New()), profile.ErrInvalidName, "name %q", name)
	}
}

func TestEnsureStorageIdempotent(t *testing.T) {
	store := profile.NewStore(t.TempDir())
	require.NoError(t, store.EnsureStorage())
	require.NoError(t, store.EnsureStorage())

	info, err := os.Stat(store.Dir())
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestSortedButtons(t *testing.T) {
	p := &profile.Profile{Buttons: []profile.ButtonSpec{
		{Order: 2, Name: "order2"},
		{Order: 0, Name: "order0"},
		{Order: 1, Name: "order1"},
	}}

	var names []string
	for _, b := range p.SortedButtons() {
		names = append(names, b.Name)
	}
	assert.Equal(t, []string{"order0", "order1", "order2"}, names)
	assert.Equal(t, "order2", p.Buttons[0].Name, "source order untouched")
}

func TestSortedButtonsTiesKeepPosition(t *testing.T) {
	p := &profile.Profile{Buttons: []profile.ButtonSpec{
		{Order: 1, Name: "first"},
		{Order: 0, Name: "zero"},
		{Order: 1, Name: "second"},
	}}

	sorted := p.SortedButtons()
	assert.Equal(t, "zero", sorted[0].Name)
	assert.Equal(t, "first", sorted[1].Name)
	assert.Equal(t, "second", sorted[2].Name)
}

func TestListImportExport(t *testing.T) {
	base := t.TempDir()
	store := profile.NewStore(base)

	names, err := store.List()
	require.NoError(t, err)
	assert.Empty(t, names)

	src := filepath.Join(t.TempDir(), "gig.json")
	require.NoError(t, store.Export(profile.Template(), src))

	name, err := store.Import(src)
	require.NoError(t, err)
	assert.Equal(t, "gig.json", name)

	require.NoError(t, store.Save("b.json", profile.New()))
	require.NoError(t, os.WriteFile(filepath.Join(store.Dir(), "notes.txt"), []byte("x"), 0644))

	names, err = store.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"b.json", "gig.json"}, names)

	p, err := store.Load("gig.json")
	require.NoError(t, err)
	assert.Equal(t, profile.Template(), p)
}

func TestImportRejectsInvalid(t *testing.T) {
	store := profile.NewStore(t.TempDir())
	src := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, os.WriteFile(src, []byte("{"), 0644))

	_, err := store.Import(src)
	require.ErrorIs(t, err, profile.ErrProfileInvalid)
	assert.False(t, store.Exists("broken.json"))
}

func TestSample(t *testing.T) {
	p := profile.Sample()
	assert.Equal(t, "Sample", p.Name)
	assert.NotEmpty(t, p.Buttons)
	require.NoError(t, p.Validate())
}

func TestInert(t *testing.T) {
	assert.True(t, profile.ButtonSpec{Name: "x"}.Inert())
	assert.True(t, profile.ButtonSpec{Name: "x", CCValue: profile.Int(3)}.Inert())
	assert.False(t, profile.ButtonSpec{ProgramChange: profile.Int(0)}.Inert())
	assert.False(t, profile.ButtonSpec{CCNumber: profile.Int(0)}.Inert())
}

func TestClone(t *testing.T) {
	p := profile.Template()
	c := p.Clone()
	*c.Buttons[0].ProgramChange = 9
	c.Name = "changed"

	assert.Equal(t, 1, *p.Buttons[0].ProgramChange)
	assert.Equal(t, "Template", p.Name)
}
