// Package didl decodes DIDL-Lite listing fragments returned by a
// ContentDirectory Browse action into model.MediaItem records.
//
// Only the fields camsync browses with ("dc:title,dc:date,res@size")
// plus ids and upnp:class are decoded; everything else in the fragment
// is ignored. Document order is preserved so that the traversal visits
// children in the order the device listed them.
package didl
