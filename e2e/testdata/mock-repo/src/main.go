package main

import (
	"fmt"
	"os"
)

func main() {
	apiKey := os.Getenv("API_KEY")
	dbUrl := os.Getenv("DATABASE_URL")
	// os.Getenv("COMMENTED_OUT")
	port, ok := os.LookupEnv("PORT")
	fmt.Println(apiKey, dbUrl, port, ok)
}
