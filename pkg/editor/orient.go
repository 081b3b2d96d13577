package editor

import (
	"encoding/binary"
	"errors"
)

var errNoOrientation = errors.New("editor: no exif orientation")

const (
	markerSOS      = 0xDA
	markerAPP1     = 0xE1
	tagOrientation = 0x0112
	typeShort      = 3
)

// jpegOrientation returns the EXIF orientation (1..8) stored in IFD0 of a
// JPEG APP1 segment.
func jpegOrientation(data []byte) (int, error) {
	tiff, err := exifTIFF(data)
	if err != nil {
		return 0, err
	}
	if len(tiff) < 8 {
		return 0, errNoOrientation
	}
	var order binary.ByteOrder
	switch string(tiff[:2]) {
	case "II":
		order = binary.LittleEndian
	case "MM":
		order = binary.BigEndian
	default:
		return 0, errNoOrientation
	}
	if order.Uint16(tiff[2:4]) != 0x2A {
		return 0, errNoOrientation
	}
	ifd := int(order.Uint32(tiff[4:8]))
	if ifd < 8 || ifd+2 > len(tiff) {
		return 0, errNoOrientation
	}
	n := int(order.Uint16(tiff[ifd : ifd+2]))
	for i := 0; i < n; i++ {
		e := ifd + 2 + i*12
		if e+12 > len(tiff) {
			break
		}
		if order.Uint16(tiff[e:e+2]) != tagOrientation || order.Uint16(tiff[e+2:e+4]) != typeShort {
			continue
		}
		v := int(order.Uint16(tiff[e+8 : e+10]))
		if v < 1 || v > 8 {
			return 0, errNoOrientation
		}
		return v, nil
	}
	return 0, errNoOrientation
}

// exifTIFF walks JPEG marker segments up to start-of-scan and returns the
// TIFF block of the first Exif APP1 segment.
func exifTIFF(data []byte) ([]byte, error) {
	if len(data) < 4 || data[0] != 0xFF || data[1] != 0xD8 {
		return nil, errNoOrientation
	}
	for i := 2; i+4 <= len(data); {
		if data[i] != 0xFF {
			i++
			continue
		}
		marker := data[i+1]
		if marker == markerSOS {
			break
		}
		size := int(data[i+2])<<8 | int(data[i+3])
		if size < 2 || i+2+size > len(data) {
			break
		}
		seg := data[i+4 : i+2+size]
		if marker == markerAPP1 && len(seg) >= 6 && string(seg[:6]) == "Exif\x00\x00" {
			return seg[6:], nil
		}
		i += 2 + size
	}
	return nil, errNoOrientation
}
