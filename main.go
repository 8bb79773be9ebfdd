package main

import "accountsvc/internal/app"

// @title           Account Service API
// @version         1.0
// @description     User accounts: registration with email OTP verification, login, password reset and profile management.

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	app.Run()
}
