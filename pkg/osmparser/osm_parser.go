package osmparser

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/lintang-b-s/Stoplocator/pkg/geo"
	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"
	"github.com/paulmach/osm/osmxml"
	"go.uber.org/zap"
)

type Format int

const (
	FormatPBF Format = iota
	FormatXML
)

// FormatFromPath picks the decoder from the file extension (.osm/.xml is xml, everything else pbf).
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".osm", ".xml":
		return FormatXML
	default:
		return FormatPBF
	}
}

// OsmParser extracts public transport nodes from an osm extract.
type OsmParser struct {
	region *geo.Region
	logger *zap.Logger
}

func NewOSMParser(logger *zap.Logger) *OsmParser {
	return &OsmParser{logger: logger}
}

// WithRegion drops every node outside r.
func (p *OsmParser) WithRegion(r geo.Region) *OsmParser {
	p.region = &r
	return p
}

func (p *OsmParser) Parse(ctx context.Context, mapFile string) ([]Row, error) {
	f, err := os.Open(mapFile)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return p.ParseReader(ctx, f, FormatFromPath(mapFile))
}

func (p *OsmParser) ParseReader(ctx context.Context, r io.Reader, format Format) ([]Row, error) {
	var scanner osm.Scanner
	switch format {
	case FormatXML:
		scanner = osmxml.New(ctx, r)
	default:
		pbf := osmpbf.New(ctx, r, 1)
		pbf.SkipWays = true
		pbf.SkipRelations = true
		scanner = pbf
	}
	defer scanner.Close()

	rows := make([]Row, 0, 1024)
	countNodes := 0
	for scanner.Scan() {
		node, ok := scanner.Object().(*osm.Node)
		if !ok {
			continue
		}
		countNodes++
		if countNodes%1000000 == 0 {
			p.logger.Sugar().Infof("scanning openstreetmap nodes: %d...", countNodes)
		}

		row, ok := rowFromNode(node)
		if !ok {
			continue
		}
		if p.region != nil && !p.region.Contains(row.Location()) {
			continue
		}
		rows = append(rows, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan osm: %w", err)
	}

	p.logger.Info("extracted public transport nodes",
		zap.Int("nodes", countNodes), zap.Int("rows", len(rows)))
	return rows, nil
}

// nodeKind classifies a node as station, platform or stop position.
// public_transport wins; the legacy highway/railway/amenity tags are a fallback.
func nodeKind(tags osm.Tags) string {
	switch tags.Find("public_transport") {
	case KindStation, KindPlatform, KindStopPosition:
		return tags.Find("public_transport")
	}
	switch {
	case tags.Find("railway") == "station", tags.Find("railway") == "halt",
		tags.Find("amenity") == "bus_station", tags.Find("amenity") == "ferry_terminal":
		return KindStation
	case tags.Find("highway") == "bus_stop", tags.Find("highway") == "platform",
		tags.Find("railway") == "platform":
		return KindPlatform
	case tags.Find("railway") == "tram_stop", tags.Find("railway") == "stop":
		return KindStopPosition
	}
	return ""
}

func rowFromNode(node *osm.Node) (Row, bool) {
	kind := nodeKind(node.Tags)
	if kind == "" {
		return Row{}, false
	}

	names := make([]string, 0, 2)
	seen := make(map[string]struct{}, 2)
	for _, key := range NameKeys {
		for _, name := range strings.Split(node.Tags.Find(key), ";") {
			name = sanitize(name)
			if name == "" {
				continue
			}
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return Row{}, false
	}

	tags := make(map[string]string)
	for _, tag := range node.Tags {
		if IsTagKey(tag.Key) {
			tags[tag.Key] = sanitize(tag.Value)
		}
	}

	return Row{
		ID:    int64(node.ID),
		Kind:  kind,
		Lat:   node.Lat,
		Lon:   node.Lon,
		Names: strings.Join(names, "|"),
		Tags:  tags,
	}, true
}

// sanitize strips the characters used as separators in the dataset cache.
func sanitize(s string) string {
	s = strings.Map(func(r rune) rune {
		switch r {
		case '\t', '\n', '\r', '|':
			return ' '
		}
		return r
	}, s)
	return strings.TrimSpace(s)
}
