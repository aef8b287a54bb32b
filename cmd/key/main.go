package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"trip-tracker/internal/cli"
)

func main() {
	var (
		userID = flag.String("user-id", "", "Subject of the token")
		role   = flag.String("role", "TRAVELER", "User role: TRAVELER | ADMIN")
		tripID = flag.String("trip-id", "", "Restrict the token to one trip (empty: any trip)")
		secret = flag.String("secret", "", "JWT HMAC secret (HS256)")
		ttl    = flag.Duration("ttl", 2*time.Hour, "Token lifetime")
	)
	flag.Parse()

	if *userID == "" || *secret == "" {
		fmt.Fprintln(os.Stderr, "usage: key --user-id=<id> --role=TRAVELER --secret='<secret>' [--trip-id=<trip>] [--ttl=2h]")
		os.Exit(2)
	}

	token, claims, err := cli.GenerateUserToken(*secret, *userID, *role, *tripID, *ttl)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	fmt.Println("TOKEN:")
	fmt.Println(token)
	fmt.Println("\nCLAIMS:")
	fmt.Printf("  sub:     %s\n", claims.Subject)
	fmt.Printf("  role:    %s\n", claims.Role)
	if claims.TripID != "" {
		fmt.Printf("  trip_id: %s\n", claims.TripID)
	}
	fmt.Printf("  iat:     %s\n", claims.IssuedAt.Time.UTC().Format(time.RFC3339))
	fmt.Printf("  exp:     %s\n", claims.ExpiresAt.Time.UTC().Format(time.RFC3339))
}
