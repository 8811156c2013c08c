package handlers

import (
	"crypto/md5"
	"math/big"
	"net/http"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/stdatiks/jdenticon-go"
)

const identiconSize = 64

func generateIdenticonSVG(key string) []byte {
	c := jdenticon.DefaultConfig
	c.Background = generateColorFromHash(key)
	c.Width = identiconSize
	c.Height = identiconSize
	icon := jdenticon.NewWithConfig(key, c)
	svg, _ := icon.SVG()
	return svg
}

func generateColorFromHash(s string) colorful.Color {
	hash := md5.Sum([]byte(s))
	hashInt := new(big.Int).SetBytes(hash[:])
	hue := float64(new(big.Int).Mod(hashInt, big.NewInt(360)).Int64())

	return colorful.Hsv(hue, 0.45, 0.95)
}

// Identicon renders the fallback node image for nodes without an identicon url
func Identicon(w http.ResponseWriter, r *http.Request) {
	key := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("key")))
	if key == "" {
		http.Error(w, "Missing key parameter", http.StatusBadRequest)
		return
	}

	svg := generateIdenticonSVG(strings.TrimPrefix(key, "0x"))

	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.WriteHeader(http.StatusOK)
	w.Write(svg)
}
