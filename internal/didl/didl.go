package didl

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"

	"github.com/handiism/camsync/internal/model"
)

// ContentDirectory Browse responses wrap listings in a DIDL-Lite XML
// fragment like:
//
//	<DIDL-Lite xmlns="urn:schemas-upnp-org:metadata-1-0/DIDL-Lite/"
//	           xmlns:dc="http://purl.org/dc/elements/1.1/"
//	           xmlns:upnp="urn:schemas-upnp-org:metadata-1-0/upnp/">
//	  <container id="1"><dc:title>DCIM</dc:title>
//	    <upnp:class>object.container</upnp:class></container>
//	  <item id="1.1"><dc:title>IMG_0001.JPG</dc:title>
//	    <dc:date>2023-06-15T10:30:00</dc:date>
//	    <upnp:class>object.item.imageItem.photo</upnp:class>
//	    <res size="5000000">http://cam/full.jpg</res></item>
//	</DIDL-Lite>
//
// Parse decodes such a fragment into model.MediaItem records,
// preserving document order across interleaved container and item
// elements.

// document is the wire shape of a DIDL-Lite fragment. The ",any" slice
// collects container and item elements in document order; XMLName on
// object tells them apart.
type document struct {
	XMLName xml.Name `xml:"DIDL-Lite"`
	Objects []object `xml:",any"`
}

type object struct {
	XMLName xml.Name
	ID      string `xml:"id,attr"`
	Title   string `xml:"title"`
	Date    string `xml:"date"`
	Class   string `xml:"class"`
	Res     []res  `xml:"res"`
}

type res struct {
	Size string `xml:"size,attr"`
	URI  string `xml:",chardata"`
}

// Parse decodes a DIDL-Lite fragment into media items.
//
// Containers come through with empty Resources; leaf items carry one
// MediaItem.Resource per res element. A missing or malformed res@size
// decodes as size 0 (such a resource loses largest-size selection but
// is not an error). Malformed XML is an error: the fragment is part of
// a Browse response, and a Browse response that cannot be decoded is
// fatal to the traversal that requested it.
func Parse(fragment string) ([]model.MediaItem, error) {
	var doc document
	if err := xml.Unmarshal([]byte(fragment), &doc); err != nil {
		return nil, fmt.Errorf("decoding DIDL-Lite: %w", err)
	}

	items := make([]model.MediaItem, 0, len(doc.Objects))
	for _, obj := range doc.Objects {
		switch obj.XMLName.Local {
		case "container", "item":
		default:
			continue
		}

		item := model.MediaItem{
			ID:    obj.ID,
			Title: strings.TrimSpace(obj.Title),
			Class: strings.TrimSpace(obj.Class),
			Date:  strings.TrimSpace(obj.Date),
		}
		for _, r := range obj.Res {
			uri := strings.TrimSpace(r.URI)
			if uri == "" {
				continue
			}
			size, err := strconv.ParseInt(r.Size, 10, 64)
			if err != nil {
				size = 0
			}
			item.Resources = append(item.Resources, model.Resource{URI: uri, Size: size})
		}
		items = append(items, item)
	}

	return items, nil
}
