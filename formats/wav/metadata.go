// SPDX-License-Identifier: EPL-2.0

package wav

import (
	gowav "github.com/go-audio/wav"

	"github.com/ik5/audpipe/audio"
)

// infoFields maps RIFF INFO entries to tag keys. The first key is the one
// used when reading; any of them is accepted when writing.
var infoFields = []struct {
	keys  []string
	field func(m *gowav.Metadata) *string
}{
	{[]string{"title"}, func(m *gowav.Metadata) *string { return &m.Title }},
	{[]string{"artist"}, func(m *gowav.Metadata) *string { return &m.Artist }},
	{[]string{"album", "product"}, func(m *gowav.Metadata) *string { return &m.Product }},
	{[]string{"genre"}, func(m *gowav.Metadata) *string { return &m.Genre }},
	{[]string{"date", "year", "creation_date"}, func(m *gowav.Metadata) *string { return &m.CreationDate }},
	{[]string{"comment", "comments", "description"}, func(m *gowav.Metadata) *string { return &m.Comments }},
	{[]string{"copyright"}, func(m *gowav.Metadata) *string { return &m.Copyright }},
	{[]string{"track", "tracknumber", "track_number"}, func(m *gowav.Metadata) *string { return &m.TrackNbr }},
	{[]string{"encoder", "software"}, func(m *gowav.Metadata) *string { return &m.Software }},
	{[]string{"engineer"}, func(m *gowav.Metadata) *string { return &m.Engineer }},
	{[]string{"technician"}, func(m *gowav.Metadata) *string { return &m.Technician }},
	{[]string{"keywords"}, func(m *gowav.Metadata) *string { return &m.Keywords }},
	{[]string{"medium"}, func(m *gowav.Metadata) *string { return &m.Medium }},
	{[]string{"subject"}, func(m *gowav.Metadata) *string { return &m.Subject }},
	{[]string{"source"}, func(m *gowav.Metadata) *string { return &m.Source }},
	{[]string{"location"}, func(m *gowav.Metadata) *string { return &m.Location }},
}

func metadataFromInfo(info *gowav.Metadata) *audio.Metadata {
	if info == nil {
		return nil
	}

	md := &audio.Metadata{}
	for _, f := range infoFields {
		if v := *f.field(info); v != "" {
			md.Set(f.keys[0], v)
		}
	}
	if md.Len() == 0 {
		return nil
	}
	return md
}

// infoFromMetadata keeps the tags RIFF INFO can represent. It returns nil
// when there are none.
func infoFromMetadata(md *audio.Metadata) *gowav.Metadata {
	info := &gowav.Metadata{}
	found := false
	for _, f := range infoFields {
		for _, k := range f.keys {
			if v, ok := md.Lookup(k); ok && v != "" {
				*f.field(info) = v
				found = true
				break
			}
		}
	}
	if !found {
		return nil
	}
	return info
}
