package catalog

import (
	"fmt"
	"strings"
)

const defaultStoreRegion = "cn"

// StoreURL is the deep link that opens the application page in the App Store app
func StoreURL(appID string) string {
	return fmt.Sprintf("itms-apps://itunes.apple.com/app/id%s?mt=8", appID)
}

// WebStoreURL is the browser fallback for StoreURL. An empty region means "cn".
func WebStoreURL(appID, region string) string {
	region = strings.ToLower(strings.TrimSpace(region))
	if region == "" {
		region = defaultStoreRegion
	}
	return fmt.Sprintf("https://apps.apple.com/%s/app/id%s?mt=8", region, appID)
}

// ReviewURL opens the write-review sheet for the application
func ReviewURL(appID string) string {
	return fmt.Sprintf("itms-apps://itunes.apple.com/app/id%s?action=write-review", appID)
}
