package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"os"
	"runtime"
	"runtime/pprof"
	"strings"
	"time"

	"github.com/blockcomp/bc-encoder/bc"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "encode":
		encodeCmd(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage:")
	fmt.Fprintln(os.Stderr, "  bcbench encode -format bc1|bc2|bc3|bc4|bc5|bc6h|bc7 -w W -h H [-profile veryfast|basic|slow|ultrafast] [-iters N] [-checksum fnv|none]")
}

func encodeCmd(args []string) {
	fs := flag.NewFlagSet("encode", flag.ExitOnError)
	var (
		width       int
		height      int
		formatName  string
		profile     string
		iters       int
		checksumOpt string
		cpuprofile  string
		memprofile  string
		memprofRate int
	)
	fs.IntVar(&width, "w", 256, "width in pixels (rounded up to a multiple of 4)")
	fs.IntVar(&height, "h", 256, "height in pixels (rounded up to a multiple of 4)")
	fs.StringVar(&formatName, "format", "bc7", "format: bc1|bc2|bc3|bc4|bc5|bc6h|bc7")
	fs.StringVar(&profile, "profile", "basic", "bc6h: veryfast|basic|slow; bc7: ultrafast|veryfast|basic|slow; ignored otherwise")
	fs.IntVar(&iters, "iters", 20, "iterations over the synthetic image")
	fs.StringVar(&checksumOpt, "checksum", "fnv", "checksum: fnv|none (for benchmarking)")
	fs.StringVar(&cpuprofile, "cpuprofile", "", "optional CPU profile output path")
	fs.StringVar(&memprofile, "memprofile", "", "optional memory profile output path")
	fs.IntVar(&memprofRate, "memprofilerate", 0, "optional runtime.MemProfileRate override (0 = default)")
	_ = fs.Parse(args)

	if width <= 0 || height <= 0 {
		fmt.Fprintln(os.Stderr, "invalid dimensions")
		os.Exit(2)
	}
	if iters <= 0 {
		fmt.Fprintln(os.Stderr, "iters must be > 0")
		os.Exit(2)
	}

	format, err := parseFormat(formatName)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	settings, err := parseSettings(format, profile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	blockW := (width + 3) / 4
	blockH := (height + 3) / 4
	tiles := make([]bc.Tile, blockW*blockH)
	hdr := format == bc.FormatBC6H
	for ty := 0; ty < blockH; ty++ {
		for tx := 0; tx < blockW; tx++ {
			tiles[ty*blockW+tx] = fillPatternTile(tx, ty, hdr)
		}
	}

	if memprofRate > 0 {
		runtime.MemProfileRate = memprofRate
	}

	var cpuFile *os.File
	if cpuprofile != "" {
		f, err := os.Create(cpuprofile)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		cpuFile = f
		if err := pprof.StartCPUProfile(f); err != nil {
			_ = f.Close()
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		defer func() {
			pprof.StopCPUProfile()
			_ = cpuFile.Close()
		}()
	}

	start := time.Now()
	var checksum uint64
	doChecksum := strings.ToLower(strings.TrimSpace(checksumOpt)) != "none"

	for i := 0; i < iters; i++ {
		for t := range tiles {
			block, err := bc.Encode(format, &tiles[t], settings)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			if doChecksum {
				checksum = fnv1a64(checksum, block)
			}
		}
	}
	dur := time.Since(start)

	if memprofile != "" {
		f, err := os.Create(memprofile)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		defer f.Close()
		if err := pprof.WriteHeapProfile(f); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}

	texels := float64(blockW*blockH*16) * float64(iters)
	mpixPerS := texels / dur.Seconds() / 1e6

	checksumStr := fmtChecksum(checksum)
	if !doChecksum {
		checksumStr = "none"
	}

	fmt.Printf("RESULT format=%s profile=%s size=%dx%d blocks=%d iters=%d seconds=%.6f mpix/s=%.3f checksum=%s\n",
		format,
		profile,
		blockW*4, blockH*4,
		blockW*blockH,
		iters,
		dur.Seconds(),
		mpixPerS,
		checksumStr,
	)
}

func parseFormat(s string) (bc.Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "bc1":
		return bc.FormatBC1, nil
	case "bc2":
		return bc.FormatBC2, nil
	case "bc3":
		return bc.FormatBC3, nil
	case "bc4":
		return bc.FormatBC4, nil
	case "bc5":
		return bc.FormatBC5, nil
	case "bc6h":
		return bc.FormatBC6H, nil
	case "bc7":
		return bc.FormatBC7, nil
	default:
		return 0, fmt.Errorf("invalid -format %q (want bc1|bc2|bc3|bc4|bc5|bc6h|bc7)", s)
	}
}

func parseSettings(format bc.Format, profile string) (bc.Settings, error) {
	var settings bc.Settings
	switch format {
	case bc.FormatBC6H:
		p := profile
		if p == "ultrafast" {
			p = "veryfast"
		}
		s, err := bc.NewBC6HSettings(p)
		if err != nil {
			return settings, err
		}
		settings.BC6H = s
	case bc.FormatBC7:
		s, err := bc.NewBC7Settings(profile)
		if err != nil {
			return settings, err
		}
		settings.BC7 = s
	}
	return settings, nil
}

// fillPatternTile synthesizes a deterministic, spatially-varying tile so
// successive blocks aren't all identical (which would hide quantization
// and partition-search cost behind a degenerate fast path).
func fillPatternTile(tx, ty int, hdr bool) bc.Tile {
	var texels [16][4]uint8
	for ly := 0; ly < 4; ly++ {
		for lx := 0; lx < 4; lx++ {
			x := tx*4 + lx
			y := ty*4 + ly
			k := ly*4 + lx
			texels[k][0] = uint8(x*3 + y*5)
			texels[k][1] = uint8(x*11 + y*13)
			texels[k][2] = uint8(x ^ y)
			texels[k][3] = uint8(255 - ((x*5 + y*7) & 0xFF))
		}
	}
	if !hdr {
		return bc.NewTileLDR(texels)
	}
	var hdrTexels [16][3]float32
	for k := 0; k < 16; k++ {
		hdrTexels[k][0] = float32(texels[k][0]) / 255
		hdrTexels[k][1] = float32(texels[k][1]) / 255
		hdrTexels[k][2] = float32(texels[k][2]) / 255
	}
	return bc.NewTileHDR(hdrTexels)
}

func fnv1a64(seed uint64, data []byte) uint64 {
	const (
		offset64 = 14695981039346656037
		prime64  = 1099511628211
	)
	h := seed
	if h == 0 {
		h = offset64
	}
	for _, b := range data {
		h ^= uint64(b)
		h *= prime64
	}
	return h
}

func fmtChecksum(v uint64) string {
	var b [8]byte
	for i := 0; i < 8; i++ {
		b[7-i] = byte(v >> uint(i*8))
	}
	return hex.EncodeToString(b[:])
}
