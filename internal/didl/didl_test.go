package didl

import (
	"testing"
)

const sampleFragment = `<DIDL-Lite xmlns="urn:schemas-upnp-org:metadata-1-0/DIDL-Lite/"
  xmlns:dc="http://purl.org/dc/elements/1.1/"
  xmlns:upnp="urn:schemas-upnp-org:metadata-1-0/upnp/">
  <container id="1" parentID="0" restricted="1">
    <dc:title>DCIM</dc:title>
    <upnp:class>object.container</upnp:class>
  </container>
  <item id="1.1" parentID="1" restricted="1">
    <dc:title>IMG_0001.JPG</dc:title>
    <dc:date>2023-06-15T10:30:00</dc:date>
    <upnp:class>object.item.imageItem.photo</upnp:class>
    <res size="100000" protocolInfo="http-get:*:image/jpeg:*">http://cam/preview.jpg</res>
    <res size="5000000" protocolInfo="http-get:*:image/jpeg:*">http://cam/full.jpg</res>
  </item>
</DIDL-Lite>`

func TestParse(t *testing.T) {
	items, err := Parse(sampleFragment)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("Parse() returned %d items, want 2", len(items))
	}

	folder := items[0]
	if !folder.IsContainer() {
		t.Errorf("first object class = %q, want a container", folder.Class)
	}
	if folder.ID != "1" || folder.Title != "DCIM" {
		t.Errorf("container = %+v, want id 1 title DCIM", folder)
	}

	photo := items[1]
	if !photo.IsImage() {
		t.Errorf("second object class = %q, want an image item", photo.Class)
	}
	if photo.Date != "2023-06-15T10:30:00" {
		t.Errorf("photo.Date = %q", photo.Date)
	}
	if len(photo.Resources) != 2 {
		t.Fatalf("photo has %d resources, want 2", len(photo.Resources))
	}
	if photo.Resources[1].Size != 5000000 || photo.Resources[1].URI != "http://cam/full.jpg" {
		t.Errorf("resource = %+v, want 5000000 bytes at http://cam/full.jpg", photo.Resources[1])
	}
}

func TestParse_PreservesDocumentOrder(t *testing.T) {
	fragment := `<DIDL-Lite xmlns="urn:schemas-upnp-org:metadata-1-0/DIDL-Lite/"
	  xmlns:dc="http://purl.org/dc/elements/1.1/"
	  xmlns:upnp="urn:schemas-upnp-org:metadata-1-0/upnp/">
	  <item id="a"><dc:title>A</dc:title><upnp:class>object.item.imageItem</upnp:class></item>
	  <container id="b"><dc:title>B</dc:title><upnp:class>object.container</upnp:class></container>
	  <item id="c"><dc:title>C</dc:title><upnp:class>object.item.imageItem</upnp:class></item>
	</DIDL-Lite>`

	items, err := Parse(fragment)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	var ids []string
	for _, item := range items {
		ids = append(ids, item.ID)
	}
	want := []string{"a", "b", "c"}
	for i := range want {
		if i >= len(ids) || ids[i] != want[i] {
			t.Fatalf("order = %v, want %v", ids, want)
		}
	}
}

func TestParse_MissingSizeDecodesAsZero(t *testing.T) {
	fragment := `<DIDL-Lite xmlns="urn:schemas-upnp-org:metadata-1-0/DIDL-Lite/"
	  xmlns:dc="http://purl.org/dc/elements/1.1/"
	  xmlns:upnp="urn:schemas-upnp-org:metadata-1-0/upnp/">
	  <item id="x"><dc:title>X.JPG</dc:title>
	    <upnp:class>object.item.imageItem.photo</upnp:class>
	    <res>http://cam/x.jpg</res>
	  </item>
	</DIDL-Lite>`

	items, err := Parse(fragment)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if len(items) != 1 || len(items[0].Resources) != 1 {
		t.Fatalf("items = %+v, want one item with one resource", items)
	}
	if items[0].Resources[0].Size != 0 {
		t.Errorf("Size = %d, want 0", items[0].Resources[0].Size)
	}
}

func TestParse_EmptyListing(t *testing.T) {
	items, err := Parse(`<DIDL-Lite xmlns="urn:schemas-upnp-org:metadata-1-0/DIDL-Lite/"></DIDL-Lite>`)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("Parse() of empty listing returned %d items", len(items))
	}
}

func TestParse_MalformedXML(t *testing.T) {
	if _, err := Parse(`<DIDL-Lite><item>`); err == nil {
		t.Error("Parse() = nil error for malformed XML")
	}
}
