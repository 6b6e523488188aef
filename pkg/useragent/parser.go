package useragent

import (
	"fmt"
	"os"
	"strings"

	"github.com/ua-parser/uap-go/uaparser"
	"go.uber.org/zap"
)

// Parser wraps the User-Agent parser with device type detection for click
// telemetry.
type Parser struct {
	parser *uaparser.Parser
	log    *zap.Logger
}

// DeviceInfo represents parsed device information.
type DeviceInfo struct {
	DeviceType string // mobile, desktop, tablet, bot, unknown
	Browser    string // Chrome, Firefox, Safari, etc.
	OS         string // Windows, iOS, Android, etc.
	Raw        string // Original User-Agent string
}

// NewParser creates a parser from the given regexes file. When the path is
// empty or the file is missing it falls back to the regexes embedded in
// uap-go, so telemetry still classifies devices without the asset.
func NewParser(regexFilePath string, log *zap.Logger) (*Parser, error) {
	if regexFilePath != "" {
		if regexBytes, err := os.ReadFile(regexFilePath); err == nil {
			parser, err := uaparser.NewFromBytes(regexBytes)
			if err != nil {
				return nil, fmt.Errorf("failed to create User-Agent parser: %w", err)
			}
			log.Info("User-Agent parser initialized", zap.String("regexes_file", regexFilePath))
			return &Parser{parser: parser, log: log}, nil
		}
		log.Warn("regexes file not readable, using embedded regexes", zap.String("path", regexFilePath))
	}

	return &Parser{parser: uaparser.NewFromSaved(), log: log}, nil
}

// ParseUserAgent parses a User-Agent string and returns device information.
func (p *Parser) ParseUserAgent(userAgent string) *DeviceInfo {
	if userAgent == "" {
		return &DeviceInfo{
			DeviceType: "unknown",
			Browser:    "unknown",
			OS:         "unknown",
		}
	}

	client := p.parser.Parse(userAgent)

	info := &DeviceInfo{
		Browser: orUnknown(client.UserAgent.Family),
		OS:      orUnknown(client.Os.Family),
		Raw:     userAgent,
	}
	info.DeviceType = determineDeviceType(client, userAgent)
	return info
}

func determineDeviceType(client *uaparser.Client, userAgent string) string {
	ua := strings.ToLower(userAgent)

	if strings.Contains(ua, "bot") || strings.Contains(ua, "spider") || strings.Contains(ua, "crawler") ||
		strings.Contains(strings.ToLower(client.Device.Family), "spider") {
		return "bot"
	}

	osFamily := strings.ToLower(client.Os.Family)
	device := strings.ToLower(client.Device.Family)

	switch {
	case strings.Contains(device, "ipad") || strings.Contains(ua, "tablet") || strings.Contains(ua, "kindle"):
		return "tablet"
	case strings.Contains(device, "iphone") || osFamily == "ios" || osFamily == "android" ||
		strings.Contains(ua, "mobile") || strings.Contains(ua, "windows phone"):
		return "mobile"
	case osFamily == "windows" || osFamily == "mac os x" || osFamily == "linux" ||
		strings.Contains(osFamily, "chrome os"):
		return "desktop"
	default:
		return "unknown"
	}
}

func orUnknown(s string) string {
	if s == "" || s == "Other" {
		return "unknown"
	}
	return s
}
