// Package db constructs the datastore clients: the Firestore client backing
// the donation collections and the legacy CloudSQL Postgres connection the
// mirror writes to.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	firebase "firebase.google.com/go"
	fbauth "firebase.google.com/go/auth"

	"cloud.google.com/go/firestore"

	_ "github.com/GoogleCloudPlatform/cloudsql-proxy/proxy/dialers/postgres"
	_ "github.com/lib/pq"
)

// Clients builds the Firestore and Firebase auth clients from the ambient
// credentials (GOOGLE_APPLICATION_CREDENTIALS / metadata server).
func Clients(ctx context.Context) (*firestore.Client, *fbauth.Client, error) {
	app, err := firebase.NewApp(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("initialize firebase app: %w", err)
	}

	fs, err := app.Firestore(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("initialize firestore client: %w", err)
	}

	au, err := app.Auth(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("initialize auth client: %w", err)
	}

	return fs, au, nil
}

// LegacyDB opens the CloudSQL Postgres connection for the legacy donation
// mirror. This can panic for malformed database connection strings, invalid
// credentials, or non-existance database instance.
func LegacyDB(connectionName, user, dbName, password string) *sql.DB {
	dbURI := fmt.Sprintf("host=%s dbname=%s user=%s password=%s sslmode=disable", connectionName, dbName, user, password)
	conn, err := sql.Open("cloudsqlpostgres", dbURI)
	if err != nil {
		panic(fmt.Sprintf("LegacyDB: %v", err))
	}

	return conn
}

func LogAndQuery(db *sql.DB, query string, args ...interface{}) (*sql.Rows, error) {
	log.Println(query, args)

	return db.Query(query, args...)
}

func LogAndQueryRow(db *sql.DB, query string, args ...interface{}) *sql.Row {
	log.Println(query, args)

	return db.QueryRow(query, args...)
}

func LogAndExec(db *sql.DB, query string, args ...interface{}) (sql.Result, error) {
	log.Println(query, args)

	return db.Exec(query, args...)
}
