package inspect

import (
	"fmt"
	"strconv"
	"strings"
)

// Insight kinds.
const (
	InsightLocation   = "Location"
	InsightDevice     = "Device"
	InsightTimeline   = "Timeline"
	InsightIdentifier = "Identifier"
	InsightConversion = "Conversion"
)

func buildInsights(details []Detail) []Insight {
	if len(details) == 0 {
		return nil
	}

	values := flattenDetails(details)
	var insights []Insight

	if msg, ok := locationInsight(values); ok {
		insights = append(insights, Insight{Kind: InsightLocation, Message: msg})
	}
	if msg, ok := deviceInsight(values); ok {
		insights = append(insights, Insight{Kind: InsightDevice, Message: msg})
	}
	if msg, ok := timelineInsight(values); ok {
		insights = append(insights, Insight{Kind: InsightTimeline, Message: msg})
	}
	for _, d := range details {
		if d.Category == CategoryIdentifier {
			insights = append(insights, Insight{Kind: InsightIdentifier, Message: "Unique device identifiers (serial numbers) are present."})
			break
		}
	}

	insights = append(insights, Insight{Kind: InsightConversion, Message: "Converted copies are written without this metadata."})
	return insights
}

func flattenDetails(details []Detail) map[string]string {
	values := make(map[string]string)
	for _, detail := range details {
		for _, entry := range detail.Values {
			key, value, ok := strings.Cut(entry, "=")
			if !ok {
				continue
			}
			key = strings.TrimSpace(key)
			if _, seen := values[key]; !seen {
				values[key] = strings.TrimSpace(value)
			}
		}
	}
	return values
}

func locationInsight(values map[string]string) (string, bool) {
	lat, okLat := parseCoordinate(values["GPSLatitude"])
	lon, okLon := parseCoordinate(values["GPSLongitude"])
	if !okLat || !okLon {
		return "", false
	}
	if values["GPSLatitudeRef"] == "S" {
		lat = -lat
	}
	if values["GPSLongitudeRef"] == "W" {
		lon = -lon
	}
	return fmt.Sprintf("Approx location: %.5f, %.5f", lat, lon), true
}

func deviceInsight(values map[string]string) (string, bool) {
	device := strings.TrimSpace(values["Make"] + " " + values["Model"])
	if device == "" {
		device = values["CameraModelName"]
	}
	if device == "" {
		return "", false
	}

	msg := "Device: " + device
	if kind := deviceKind(strings.ToLower(device)); kind != "" {
		msg += " (" + kind + ")"
	}
	return msg, true
}

func timelineInsight(values map[string]string) (string, bool) {
	for _, key := range []string{"DateTimeOriginal", "DateTimeDigitized", "DateTime"} {
		if ts := values[key]; ts != "" {
			// EXIF writes the date part as YYYY:MM:DD.
			return fmt.Sprintf("Captured: %s (timezone unknown)", strings.Replace(ts, ":", "-", 2)), true
		}
	}
	if ts := values["tIME"]; ts != "" {
		return fmt.Sprintf("Last modified: %s UTC", ts), true
	}
	return "", false
}

// parseCoordinate reads a decimal or a "[deg/1 min/1 sec/100]" rational triple.
func parseCoordinate(raw string) (float64, bool) {
	raw = strings.TrimSuffix(strings.TrimPrefix(strings.TrimSpace(raw), "["), "]")
	parts := strings.Fields(raw)
	if len(parts) == 0 {
		return 0, false
	}

	var total float64
	scale := 1.0
	for _, part := range parts[:min(len(parts), 3)] {
		v, ok := parseRational(part)
		if !ok {
			return 0, false
		}
		total += v / scale
		scale *= 60
	}
	return total, true
}

func parseRational(part string) (float64, bool) {
	num, den, isFraction := strings.Cut(part, "/")
	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, false
	}
	if !isFraction {
		return n, true
	}
	d, err := strconv.ParseFloat(den, 64)
	if err != nil || d == 0 {
		return 0, false
	}
	return n / d, true
}

func deviceKind(device string) string {
	has := func(words ...string) bool {
		for _, w := range words {
			if strings.Contains(device, w) {
				return true
			}
		}
		return false
	}

	switch {
	case has("iphone", "pixel", "galaxy", "android"):
		return "smartphone"
	case has("ipad", "tablet"):
		return "tablet"
	case has("gopro"):
		return "action camera"
	case has("dji"):
		return "drone"
	case has("canon", "nikon", "sony", "fujifilm", "panasonic", "olympus", "leica"):
		return "camera"
	default:
		return ""
	}
}
