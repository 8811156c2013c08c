package utils

import (
	"net/url"
	"strings"
)

var redactedQueryKeys = []string{"key", "token", "secret", "auth", "password"}

// GetRedactedUrl strips credentials and secret looking query arguments from an url, so it can be logged
func GetRedactedUrl(requrl string) string {
	urlData, err := url.Parse(requrl)
	if err != nil || urlData.Host == "" {
		return requrl
	}

	if urlData.User != nil {
		urlData.User = url.User("xxxxx")
	}

	if urlData.RawQuery != "" {
		query := urlData.Query()
		for key := range query {
			lowerKey := strings.ToLower(key)
			for _, redactedKey := range redactedQueryKeys {
				if strings.Contains(lowerKey, redactedKey) {
					query.Set(key, "xxxxx")
					break
				}
			}
		}
		urlData.RawQuery = query.Encode()
	}

	return urlData.String()
}

// JoinUrlPath appends path segments to a base url, escaping each segment
func JoinUrlPath(baseUrl string, segments ...string) (string, error) {
	return url.JoinPath(baseUrl, segments...)
}
