// Package main library loan API.
//
// @title           Library Loan API
// @version         1.0
// @description     Library loan service: accounts, API keys, loans, Google Books catalog.
// @BasePath        /
// @schemes         http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description  Use:  Bearer <JWT>
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key
package main

import "github.com/hikmatyar22/193-BilboTechDigitalLibrarySystem-DocumentArchitecture/cmd"

func main() {
	cmd.Execute()
}
