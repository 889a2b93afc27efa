package main

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"joblisting/internal/account"
	"joblisting/internal/auth"
	"joblisting/internal/config"
	"joblisting/internal/database"
)

func main() {
	var (
		resetAdmin = flag.Bool("reset-admin-password", false, "为管理员生成新的随机密码并打印一次")
		purgeUsers = flag.Bool("purge-users", false, "级联删除除管理员外的全部用户")
		listUsers  = flag.Bool("list-users", false, "列出全部用户及在线状态")
		dbDriver   = flag.String("db-driver", "", "数据库驱动 postgres|sqlite（可选，默认读 DATABASE_DRIVER）")
		dbPath     = flag.String("db-path", "", "SQLite 文件路径（可选，默认读 DATABASE_PATH）")
		dbHost     = flag.String("db-host", "", "数据库 Host（可选，默认读 DATABASE_HOST）")
		dbPort     = flag.Int("db-port", 0, "数据库 Port（可选，默认读 DATABASE_PORT）")
		dbName     = flag.String("db-name", "", "数据库名（可选，默认读 POSTGRES_DB）")
		dbUser     = flag.String("db-user", "", "数据库用户（可选，默认读 POSTGRES_USER）")
		dbPass     = flag.String("db-password", "", "数据库密码（可选，默认读 POSTGRES_PASSWORD）")
		sslMode    = flag.String("db-sslmode", "", "数据库 SSLMODE（可选，默认读 DATABASE_SSLMODE）")
	)
	flag.Parse()

	if !*resetAdmin && !*purgeUsers && !*listUsers {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	dbCfg := overrideDatabase(cfg.Database, databaseFlags{
		driver:   *dbDriver,
		path:     *dbPath,
		host:     *dbHost,
		port:     *dbPort,
		name:     *dbName,
		user:     *dbUser,
		password: *dbPass,
		sslMode:  *sslMode,
	})
	if err := config.ValidateDatabase(dbCfg); err != nil {
		log.Fatalf("database config: %v", err)
	}

	db, err := database.InitDatabase(dbCfg)
	if err != nil {
		log.Fatalf("init database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("auto migrate: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	accounts := account.NewService(db, logger)
	ctx := context.Background()
	exitCode := 0

	if *resetAdmin {
		password, err := generateRandomPassword(24)
		if err != nil {
			log.Fatalf("generate password: %v", err)
		}
		hash, err := auth.HashPassword(password)
		if err != nil {
			log.Fatalf("hash password: %v", err)
		}
		if _, err := database.EnsureAdmin(ctx, db, hash); err != nil {
			log.Fatalf("ensure admin: %v", err)
		}
		if err := accounts.ResetPassword(ctx, database.AdminUsername, password); err != nil {
			log.Fatalf("reset admin password: %v", err)
		}
		fmt.Printf("已重置管理员密码：\n")
		fmt.Printf("用户名: %s\n", database.AdminUsername)
		fmt.Printf("新密码: %s\n", password)
		fmt.Printf("提示：该密码仅显示一次。\n")
	}

	if *purgeUsers {
		result, err := accounts.BulkDeleteAllExceptAdmin(ctx)
		if err != nil {
			log.Fatalf("purge users: %v", err)
		}
		fmt.Printf("已删除 %d 个用户\n", result.Count())
		for _, name := range result.Deleted {
			fmt.Printf("  deleted %s\n", name)
		}
		for _, f := range result.Failed {
			fmt.Printf("  failed  %s: %v\n", f.Username, f.Err)
		}
		if len(result.Failed) > 0 {
			exitCode = 1
		}
	}

	if *listUsers {
		rows, err := accounts.ListUsersWithSessionStatus(ctx)
		if err != nil {
			log.Fatalf("list users: %v", err)
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tUSERNAME\tROLE\tSTATUS\tLAST LOGIN\tLAST LOGOUT")
		for _, u := range rows {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n", u.ID, u.Username, u.Role, u.Status, formatTime(u.LastLogin, "Never"), formatTime(u.LastLogout, "N/A"))
		}
		if err := w.Flush(); err != nil {
			log.Fatalf("write table: %v", err)
		}
	}

	os.Exit(exitCode)
}

type databaseFlags struct {
	driver   string
	path     string
	host     string
	port     int
	name     string
	user     string
	password string
	sslMode  string
}

// overrideDatabase 用非空的命令行参数覆盖环境变量中的数据库配置。
func overrideDatabase(base config.DatabaseConfig, f databaseFlags) config.DatabaseConfig {
	set := func(dst *string, v string) {
		if v = strings.TrimSpace(v); v != "" {
			*dst = v
		}
	}
	set(&base.Driver, strings.ToLower(f.driver))
	set(&base.Path, f.path)
	set(&base.Host, f.host)
	set(&base.Name, f.name)
	set(&base.User, f.user)
	set(&base.Password, f.password)
	set(&base.SSLMode, f.sslMode)
	if f.port > 0 {
		base.Port = f.port
	}
	return base
}

func formatTime(t *time.Time, empty string) string {
	if t == nil {
		return empty
	}
	return t.Local().Format("2006-01-02 15:04:05")
}

func generateRandomPassword(bytesLen int) (string, error) {
	if bytesLen <= 0 {
		bytesLen = 24
	}
	buf := make([]byte, bytesLen)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
