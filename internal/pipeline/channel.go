package pipeline

import (
	"github.com/backmassage/labplot/internal/loader"
	"github.com/backmassage/labplot/internal/naming"
	"github.com/backmassage/labplot/internal/reconstruct"
	"github.com/backmassage/labplot/internal/smooth"
)

// channel is one loaded and reconstructed CSV.
type channel struct {
	name     naming.ChannelName
	file     *loader.File
	series   reconstruct.Series
	smoothed bool
}

// loadChannel reads path and rebuilds its series with strategy. A nil or
// unavailable filter leaves the values as reconstructed.
func loadChannel(path string, strategy reconstruct.Strategy, filter *smooth.Filter) (*channel, error) {
	f, err := loader.Load(path)
	if err != nil {
		return nil, err
	}
	ch := &channel{
		name:   naming.ParseChannelName(path),
		file:   f,
		series: reconstruct.Reconstruct(f.Records, strategy),
	}
	ch.series.Values, ch.smoothed = filter.Smooth(ch.series.Values)
	return ch, nil
}
