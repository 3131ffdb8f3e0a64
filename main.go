package main

import (
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"adaptus/go-api/internal/db"
)

// envOr returns the environment variable or a fallback when unset.
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// requestIDMiddleware tags every request with an X-Request-ID for log
// correlation, honoring an incoming header when the client supplies one.
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.New().String()
		}
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

// appShellFiles are never cached: the service worker handles its own caching
// with versioned cache names, and a stale shell would pin old API clients.
var appShellFiles = map[string]bool{
	"/":              true,
	"/index.html":    true,
	"/app.js":        true,
	"/sw.js":         true,
	"/styles.css":    true,
	"/manifest.json": true,
}

func noCacheMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if appShellFiles[strings.ToLower(c.Request.URL.Path)] {
			c.Header("Cache-Control", "no-cache, no-store, must-revalidate")
			c.Header("Pragma", "no-cache")
			c.Header("Expires", "0")
		}
		c.Next()
	}
}

// spaHandler serves files from publicDir, falling back to index.html for any
// unmatched GET so client-side routes deep-link correctly.
func spaHandler(publicDir string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Status(http.StatusNotFound)
			return
		}
		path := filepath.Join(publicDir, filepath.Clean("/"+c.Request.URL.Path))
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			c.File(path)
			return
		}
		c.File(filepath.Join(publicDir, "index.html"))
	}
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	dbPath := envOr("DB_PATH", "adaptus.db")
	conn, err := db.Open(dbPath)
	if err != nil {
		log.Fatalf("open database %s: %v", dbPath, err)
	}
	defer conn.Close()
	if err := db.ApplyMigrations(conn); err != nil {
		log.Fatalf("apply migrations: %v", err)
	}

	programPath := envOr("PROGRAM_PATH", "training-program.json")
	program, err := loadProgram(programPath)
	if err != nil {
		log.Fatalf("load training program %s: %v", programPath, err)
	}

	h := &Handler{db: conn, program: program}

	router := gin.Default()
	router.SetTrustedProxies(nil)
	router.Use(requestIDMiddleware())
	router.Use(cors.Default())
	router.Use(noCacheMiddleware())

	h.registerRoutes(router)
	router.NoRoute(spaHandler(envOr("PUBLIC_DIR", "public")))

	addr := ":" + envOr("PORT", "3000")
	log.Printf("Adaptus running on http://localhost%s", addr)
	if err := router.Run(addr); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}
