package upnp

import (
	"context"
	"fmt"

	"github.com/huin/goupnp/dcps/av1"

	"github.com/handiism/camsync/internal/browse"
	"github.com/handiism/camsync/internal/didl"
)

const (
	browseFlagDirectChildren = "BrowseDirectChildren"
	browseFilter             = "dc:title,dc:date,res@size"
	browseSortCriteria       = ""
)

// directory implements browse.Service over a generated
// ContentDirectory:1 SOAP client.
type directory struct {
	client *av1.ContentDirectory1
}

// Browse lists the direct children of objectID starting at
// startingIndex. Every action argument is sent explicitly,
// default-valued ones included: the camera's UPnP stack rejects
// requests that omit them.
func (d *directory) Browse(ctx context.Context, objectID string, startingIndex, requestedCount uint32) (browse.Page, error) {
	result, numberReturned, totalMatches, _, err := d.client.BrowseCtx(
		ctx,
		objectID,
		browseFlagDirectChildren,
		browseFilter,
		startingIndex,
		requestedCount,
		browseSortCriteria,
	)
	if err != nil {
		return browse.Page{}, fmt.Errorf("Browse action on %s: %w", objectID, err)
	}

	items, err := didl.Parse(result)
	if err != nil {
		return browse.Page{}, err
	}

	return browse.Page{
		Items:          items,
		NumberReturned: numberReturned,
		TotalMatches:   totalMatches,
	}, nil
}
