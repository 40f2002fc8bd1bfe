package museum

import (
	"strings"
	"testing"
)

func tile(name string, cat Category) DisplayItem {
	return DisplayItem{Name: name, ImageURL: "https://img.example/" + name, Category: cat}
}

func TestCaption(t *testing.T) {
	tests := []struct {
		name string
		item DisplayItem
		want string
	}{
		{"Artist", tile("Bjork", CategoryArtist), "Artist: Bjork"},
		{"OneArtist", DisplayItem{Name: "Hyperballad", Category: CategoryTrack, Artists: []string{"Bjork"}}, "Track: Hyperballad by Bjork"},
		{"TwoArtists", DisplayItem{Name: "Watch the Throne", Category: CategoryAlbum, Artists: []string{"Jay-Z", "Kanye West"}}, "Album: Watch the Throne by Jay-Z & Kanye West"},
		{"ThreeArtists", DisplayItem{Name: "X", Category: CategoryTrack, Artists: []string{"A", "B", "C"}}, "Track: X by A, B & C"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.item.Caption(); got != tt.want {
				t.Errorf("Caption() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCategoryValid(t *testing.T) {
	for _, c := range Categories {
		if !c.Valid() {
			t.Errorf("%q should be valid", c)
		}
	}
	if Category("playlist").Valid() {
		t.Error("playlist should not be valid")
	}
}

func TestPlacementContained(t *testing.T) {
	tests := []struct {
		name string
		p    Placement
		want bool
	}{
		{"Inside", Placement{X: 10, Y: 10, Size: 100}, true},
		{"TouchesEdge", Placement{X: 700, Y: 500, Size: 100}, true},
		{"NegativeX", Placement{X: -1, Y: 0, Size: 100}, false},
		{"OverflowY", Placement{X: 0, Y: 550, Size: 100}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.p.Contained(800, 600); got != tt.want {
				t.Errorf("Contained() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		m       Museum
		wantErr string
	}{
		{
			name: "Empty",
			m:    Museum{Width: 800, Height: 600},
		},
		{
			name: "Valid",
			m: Museum{Width: 800, Height: 600, Placements: []Placement{
				{Item: tile("a", CategoryArtist), X: 0, Y: 0, Size: 80},
			}},
		},
		{
			name:    "BadCanvas",
			m:       Museum{Width: 0, Height: 600},
			wantErr: "invalid canvas",
		},
		{
			name: "MissingImage",
			m: Museum{Width: 800, Height: 600, Placements: []Placement{
				{Item: DisplayItem{Name: "a", Category: CategoryAlbum}, Size: 80},
			}},
			wantErr: "missing image",
		},
		{
			name: "UnknownCategory",
			m: Museum{Width: 800, Height: 600, Placements: []Placement{
				{Item: tile("a", "podcast"), Size: 80},
			}},
			wantErr: "unknown category",
		},
		{
			name: "OutOfBounds",
			m: Museum{Width: 800, Height: 600, Placements: []Placement{
				{Item: tile("a", CategoryTrack), X: 750, Y: 0, Size: 100},
			}},
			wantErr: "exceeds",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.m.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestUnmarshalMuseum(t *testing.T) {
	m := New(800, 600, 7, []Placement{
		{Item: tile("a", CategoryArtist), X: 10, Y: 20, Size: 100, Rotation: -12, ZIndex: 31},
		{Item: DisplayItem{Name: "b", ImageURL: "u", Category: CategoryTrack, Artists: []string{"x"}}, X: 300, Y: 200, Size: 80, ZIndex: 5},
	})
	data, err := MarshalMuseum(m)
	if err != nil {
		t.Fatal(err)
	}
	got, err := UnmarshalMuseum(data)
	if err != nil {
		t.Fatalf("UnmarshalMuseum: %v", err)
	}
	if got.ID != m.ID || got.Seed != 7 || len(got.Placements) != 2 {
		t.Fatalf("got %+v", got)
	}
	if got.Placements[1].Item.Artists[0] != "x" {
		t.Errorf("artists not preserved: %+v", got.Placements[1].Item)
	}
	if counts := got.CountByCategory(); counts[CategoryArtist] != 1 || counts[CategoryTrack] != 1 {
		t.Errorf("CountByCategory() = %v", counts)
	}

	t.Run("RejectsInvalid", func(t *testing.T) {
		_, err := UnmarshalMuseum([]byte(`{"width":10,"height":10,"placements":[{"item":{"name":"a","image_url":"u","category":"artist"},"x":5,"y":5,"size":80}]}`))
		if err == nil {
			t.Fatal("expected containment error")
		}
	})
	t.Run("RejectsGarbage", func(t *testing.T) {
		if _, err := UnmarshalMuseum([]byte("{")); err == nil {
			t.Fatal("expected parse error")
		}
	})
	t.Run("NilPlacements", func(t *testing.T) {
		got, err := UnmarshalMuseum([]byte(`{"width":10,"height":10}`))
		if err != nil {
			t.Fatal(err)
		}
		if got.Placements == nil {
			t.Error("Placements should be non-nil")
		}
	})
}
