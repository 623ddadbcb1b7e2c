package cli

import (
	"fmt"
	"os"

	"github.com/matzehuels/tagtree/pkg/graph"
	"github.com/matzehuels/tagtree/pkg/render"
	"github.com/matzehuels/tagtree/pkg/render/nodelink"
)

// writeOutputs writes snap in every format to base.<format> and returns the
// paths written.
func writeOutputs(snap graph.Snapshot, base string, formats []string, opts nodelink.Options, pngScale float64) ([]string, error) {
	var (
		dot   string
		svg   []byte
		paths []string
	)
	for _, f := range formats {
		var data []byte
		var err error
		switch f {
		case formatJSON:
			data, err = graph.MarshalSnapshot(snap)
		case formatDOT:
			if dot == "" {
				dot = nodelink.ToDOT(snap, opts)
			}
			data = []byte(dot)
		case formatSVG, formatPDF, formatPNG:
			if dot == "" {
				dot = nodelink.ToDOT(snap, opts)
			}
			if svg == nil {
				if svg, err = nodelink.RenderSVG(dot); err != nil {
					return paths, fmt.Errorf("render svg: %w", err)
				}
			}
			data, err = convert(svg, f, pngScale)
		}
		if err != nil {
			return paths, fmt.Errorf("%s output: %w", f, err)
		}
		path := base + "." + f
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return paths, fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func convert(svg []byte, format string, pngScale float64) ([]byte, error) {
	switch format {
	case formatPDF:
		return render.ToPDF(svg)
	case formatPNG:
		return render.ToPNG(svg, pngScale)
	}
	return svg, nil
}
