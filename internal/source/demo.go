package source

import (
	"fmt"
	"math/rand/v2"
	"net/url"
	"time"

	"github.com/commons-systems/photosync/internal/photo"
)

// DemoCount is the number of photos in the fallback demo dataset.
const DemoCount = 15

// demoPalette provides background colors for the placeholder images.
var demoPalette = []string{
	"0088cc", "00aa88", "aa0088", "cc8800", "8800cc",
	"008888", "aa8800", "0088aa", "cc0044", "00aa00",
}

// DemoPhotos generates the synthetic demo dataset: deterministic shape
// (ids 1..count of owner 1, dates stepping back one day per item, an m/x/y
// size triple each) with randomized colors, dimensions and counters.
func DemoPhotos(count int) []photo.Photo {
	now := time.Now().Unix()
	photos := make([]photo.Photo, 0, count)

	for i := 1; i <= count; i++ {
		width := 400 + rand.IntN(400)
		height := 300 + rand.IntN(300)
		color := demoPalette[rand.IntN(len(demoPalette))]
		caption := fmt.Sprintf("Demo photo %d", i)

		raw := photo.RawItem{
			ID:       int64(i),
			OwnerID:  1,
			Date:     now - int64(i)*86400,
			Likes:    &photo.Count{Count: rand.IntN(1000)},
			Comments: &photo.Count{Count: rand.IntN(100)},
			Reposts:  &photo.Count{Count: rand.IntN(50)},
			Text:     caption,
			Sizes: []photo.Size{
				{Tier: "m", URL: placeholderURL(200, 150, color, caption), Width: 200, Height: 150},
				{Tier: "x", URL: placeholderURL(400, 300, color, caption), Width: 400, Height: 300},
				{Tier: "y", URL: placeholderURL(width, height, color, caption), Width: width, Height: height},
			},
		}

		p, err := photo.Normalize(raw)
		if err != nil {
			// Unreachable: demo items always carry sizes.
			continue
		}
		photos = append(photos, p)
	}
	return photos
}

func placeholderURL(width, height int, color, text string) string {
	return fmt.Sprintf("https://via.placeholder.com/%dx%d/%s/ffffff?text=%s",
		width, height, color, url.QueryEscape(text))
}
