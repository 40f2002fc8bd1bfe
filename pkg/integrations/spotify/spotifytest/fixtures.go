package spotifytest

import (
	"fmt"

	zspotify "github.com/zmb3/spotify/v2"
)

// Image returns a one-element image list for url, or nil when url is "".
func Image(url string) []zspotify.Image {
	if url == "" {
		return nil
	}
	return []zspotify.Image{{URL: url, Height: 640, Width: 640}}
}

// Artist builds a top artist.
func Artist(id, name, imageURL string) zspotify.FullArtist {
	return zspotify.FullArtist{
		SimpleArtist: zspotify.SimpleArtist{ID: zspotify.ID(id), Name: name},
		Images:       Image(imageURL),
	}
}

// Track builds a top track on the given album.
func Track(id, name, albumID, albumName, imageURL string, artists ...string) zspotify.FullTrack {
	credited := make([]zspotify.SimpleArtist, 0, len(artists))
	for _, a := range artists {
		credited = append(credited, zspotify.SimpleArtist{Name: a})
	}
	t := zspotify.FullTrack{
		SimpleTrack: zspotify.SimpleTrack{ID: zspotify.ID(id), Name: name, Artists: credited},
	}
	t.Album = zspotify.SimpleAlbum{
		ID:      zspotify.ID(albumID),
		Name:    albumName,
		Images:  Image(imageURL),
		Artists: credited,
	}
	return t
}

// Artists returns n artists with images.
func Artists(n int) []zspotify.FullArtist {
	out := make([]zspotify.FullArtist, n)
	for i := range out {
		out[i] = Artist(fmt.Sprintf("ar%d", i+1), fmt.Sprintf("Artist %d", i+1), fmt.Sprintf("https://i.scdn.co/image/ar%d", i+1))
	}
	return out
}

// Tracks returns n tracks, each on its own album.
func Tracks(n int) []zspotify.FullTrack {
	out := make([]zspotify.FullTrack, n)
	for i := range out {
		out[i] = Track(
			fmt.Sprintf("tr%d", i+1), fmt.Sprintf("Track %d", i+1),
			fmt.Sprintf("al%d", i+1), fmt.Sprintf("Album %d", i+1),
			fmt.Sprintf("https://i.scdn.co/image/al%d", i+1),
			fmt.Sprintf("Artist %d", i+1),
		)
	}
	return out
}

// User returns a profile with the given id and display name.
func User(id, name string) zspotify.PrivateUser {
	return zspotify.PrivateUser{User: zspotify.User{ID: id, DisplayName: name}}
}
