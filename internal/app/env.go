package app

import (
    "errors"
    "os"
    "strings"

    "github.com/joho/godotenv"
)

// LoadEnvFiles loads one or more dotenv files into the process environment.
// Later files override earlier ones; variables already set in the real
// environment win over every file. Missing files are skipped.
func LoadEnvFiles(paths ...string) error {
    merged := map[string]string{}
    for _, p := range paths {
        if strings.TrimSpace(p) == "" {
            continue
        }
        vals, err := godotenv.Read(p)
        if err != nil {
            if errors.Is(err, os.ErrNotExist) {
                continue
            }
            return err
        }
        for k, v := range vals {
            merged[k] = v
        }
    }
    for k, v := range merged {
        if cur, ok := os.LookupEnv(k); ok && cur != "" {
            continue
        }
        if err := os.Setenv(k, v); err != nil {
            return err
        }
    }
    return nil
}
