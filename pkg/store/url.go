package store

import "strings"

// NormalizeEndpoint приводит адрес сервера к рабочему виду: добавляет
// https, а в режиме Nextcloud - суффикс remote.php/dav, если его нет.
func NormalizeEndpoint(raw string, nextcloud bool) string {
	url := raw
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		url = "https://" + url
	}
	if nextcloud && !strings.Contains(url, "remote.php/dav") {
		if !strings.HasSuffix(url, "/") {
			url += "/"
		}
		url += "remote.php/dav/"
	} else if nextcloud && strings.HasSuffix(url, "remote.php/dav") {
		url += "/"
	}
	return url
}
