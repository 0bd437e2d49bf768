// Command beacon loads pages, finds the images rendered inside the initial
// viewport and reports their pagespeed_url_hash values to a beacon endpoint.
//
// Usage:
//
//	beacon scan --beacon-url http://localhost:8080/mod_pagespeed_beacon --options-hash H123 https://example.com/
//	beacon scan --manifest targets.yaml --engine static
//	beacon sink --addr :8080
package main

func main() {
	Execute()
}
