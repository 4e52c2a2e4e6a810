package main

import "go.cachefs.dev/core/cmd/cachefsctl/cachefsctl"

func main() {
	cachefsctl.Execute()
}
