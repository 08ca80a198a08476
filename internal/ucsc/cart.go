package ucsc

import (
	"bytes"
	"fmt"
	"strings"

	"ucsc-snapshots/pkg/htmlutil"

	"github.com/PuerkitoBio/goquery"
)

const (
	cartDbVar = "db"
	// stored per assembly as `hgt.revCmplDisp_<db>`
	cartRevCmplDispVar = "hgt.revCmplDisp"
	// sent with an hgTracks request to flip the display
	toggleRevCmplDispVar = "hgt.toggleRevCmplDisp"
)

// cart is the `name value` listing of cartDump.
type cart map[string]string

func parseCart(body []byte) (cart, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse cart dump: %w", err)
	}

	c := cart{}
	text := htmlutil.GetText(doc.Get(0))
	for _, line := range strings.Split(text, "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		c[fields[0]] = strings.Join(fields[1:], " ")
	}
	return c, nil
}

// revCmplDisp returns the reverse display toggle of the cart's current assembly.
func (c cart) revCmplDisp() (bool, error) {
	db := c[cartDbVar]
	if db == "" {
		return false, fmt.Errorf("cart has no %q variable", cartDbVar)
	}

	name := fmt.Sprintf("%s_%s", cartRevCmplDispVar, db)
	raw, ok := c[name]
	if !ok {
		return false, fmt.Errorf("cart has no %q variable", name)
	}
	switch raw {
	case "0":
		return false, nil
	case "1":
		return true, nil
	}
	return false, fmt.Errorf("%q is %q, expected 0 or 1", name, raw)
}
