// Command gotoken signs, verifies and inspects tokens from the shell.
//
// Configuration comes from GOTOKEN_* environment variables; a .env file in the
// working directory is loaded first when present.
//
//	gotoken sign -sub alice -claims '{"role":"admin"}'
//	gotoken pair -sub alice
//	gotoken verify <token>
//	gotoken decode <token>
//	gotoken lint
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	goToken "github.com/MrEthical07/goToken"
	"github.com/MrEthical07/goToken/jwt"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

const usage = `usage: gotoken <command> [flags]

commands:
  sign    issue a single token
  pair    issue an access and refresh token sharing one iat
  verify  verify a token and print its claims
  decode  print header and claims without verification
  lint    report risky configuration`

func main() {
	if err := loadDotEnv(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "load .env: %v\n", err)
		os.Exit(1)
	}
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

// loadDotEnv applies path without overriding variables already set. A missing file is not
// an error.
func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(stderr, usage)
		return 2
	}

	cmd, rest := args[0], args[1:]
	var err error
	switch cmd {
	case "sign":
		err = runSign(ctx, rest, stdout, false)
	case "pair":
		err = runSign(ctx, rest, stdout, true)
	case "verify":
		err = runVerify(ctx, rest, stdout)
	case "decode":
		err = runDecode(rest, stdout)
	case "lint":
		err = runLint(stdout)
	case "-h", "-help", "--help", "help":
		fmt.Fprintln(stdout, usage)
		return 0
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n%s\n", cmd, usage)
		return 2
	}

	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(stderr, "gotoken %s: %v\n", cmd, err)
		return 1
	}
	return 0
}

func runSign(ctx context.Context, args []string, stdout io.Writer, pair bool) error {
	flags := flag.NewFlagSet("sign", flag.ContinueOnError)
	var (
		subject   = flags.String("sub", "", "subject; omitted when empty")
		audience  = flags.String("aud", "", "audience; overrides GOTOKEN_AUDIENCE")
		claimsArg = flags.String("claims", "", "custom claims as a JSON object")
		notBefore = flags.Int64("nbf", 0, "not-before as Unix seconds; 0 omits the claim")
		refresh   = flags.Bool("refresh", false, "use the refresh lifetime (sign only)")
		sensitive = flags.Bool("sensitive", false, "add a one-time jti")
		redisAddr = flags.String("redis-addr", "", "redis address for replay protection; defaults to REDIS_ADDR")
	)
	if err := flags.Parse(args); err != nil {
		return err
	}

	claims, err := parseClaims(*claimsArg)
	if err != nil {
		return err
	}

	engine, cleanup, err := buildEngine(*redisAddr)
	if err != nil {
		return err
	}
	defer cleanup()

	req := goToken.IssueRequest{
		Subject:   *subject,
		Audience:  *audience,
		Claims:    claims,
		Refresh:   *refresh,
		Sensitive: *sensitive,
	}
	if *notBefore != 0 {
		req.NotBefore = time.Unix(*notBefore, 0)
	}

	if !pair {
		token, err := engine.Issue(ctx, req)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(stdout, token)
		return err
	}

	tp, err := engine.IssuePair(ctx, req)
	if err != nil {
		return err
	}
	return writeJSON(stdout, map[string]any{
		"access_token":       tp.AccessToken,
		"refresh_token":      tp.RefreshToken,
		"issued_at":          tp.IssuedAt.Unix(),
		"access_expires_at":  tp.AccessExpiresAt.Unix(),
		"refresh_expires_at": tp.RefreshExpiresAt.Unix(),
	})
}

func runVerify(ctx context.Context, args []string, stdout io.Writer) error {
	flags := flag.NewFlagSet("verify", flag.ContinueOnError)
	redisAddr := flags.String("redis-addr", "", "redis address for replay protection; defaults to REDIS_ADDR")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if flags.NArg() != 1 {
		return errors.New("expected exactly one token argument")
	}

	engine, cleanup, err := buildEngine(*redisAddr)
	if err != nil {
		return err
	}
	defer cleanup()

	tok, err := engine.Verify(ctx, flags.Arg(0))
	if err != nil {
		return err
	}
	return writeJSON(stdout, map[string]any{
		"valid":  true,
		"header": tok.Header,
		"claims": tok.Claims,
	})
}

func runDecode(args []string, stdout io.Writer) error {
	if len(args) != 1 {
		return errors.New("expected exactly one token argument")
	}

	// decode runs without a secret, so only the encoding is read from the environment.
	enc, err := segmentEncoding()
	if err != nil {
		return err
	}
	header, claims, err := goToken.Decode(args[0], enc)
	if err != nil {
		return err
	}
	return writeJSON(stdout, map[string]any{
		"header": header,
		"claims": claims,
	})
}

func runLint(stdout io.Writer) error {
	cfg, err := goToken.LoadConfig()
	if err != nil {
		return err
	}
	result := cfg.Lint()
	for _, w := range result {
		fmt.Fprintf(stdout, "%-5s %-28s %s\n", w.Severity, w.Code, w.Message)
	}
	return result.AsError(goToken.LintHigh)
}

// buildEngine loads configuration and builds an Engine. Replay protection needs a Redis
// address when GOTOKEN_REPLAY_ENABLED is set.
func buildEngine(redisAddr string) (*goToken.Engine, func(), error) {
	cfg, err := goToken.LoadConfig()
	if err != nil {
		return nil, nil, err
	}

	b := goToken.New().WithConfig(cfg)

	if redisAddr == "" {
		redisAddr = os.Getenv("REDIS_ADDR")
	}
	var client *redis.Client
	if cfg.Replay.Enabled && redisAddr != "" {
		client = redis.NewClient(&redis.Options{Addr: redisAddr})
		b = b.WithRedis(client)
	}

	engine, err := b.Build()
	if err != nil {
		if client != nil {
			_ = client.Close()
		}
		return nil, nil, err
	}

	cleanup := func() {
		engine.Close()
		if client != nil {
			_ = client.Close()
		}
	}
	return engine, cleanup, nil
}

func segmentEncoding() (jwt.Encoding, error) {
	name := os.Getenv("GOTOKEN_ENCODING")
	if name == "" {
		name = goToken.DefaultConfig().Token.Encoding
	}
	return jwt.ParseEncoding(name)
}

func parseClaims(raw string) (goToken.MapClaims, error) {
	if raw == "" {
		return nil, nil
	}
	var claims goToken.MapClaims
	if err := json.Unmarshal([]byte(raw), &claims); err != nil {
		return nil, fmt.Errorf("claims: %w", err)
	}
	return claims, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
