package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"os"
	"time"
)

const apiBase = "http://localhost:8080/api/v1"

type Account struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
	Token    string `json:"token"`
	UserID   string `json:"userId"`
}

type Class struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type loginResponse struct {
	User struct {
		ID    string `json:"id"`
		Email string `json:"email"`
		Role  string `json:"role"`
	} `json:"user"`
	AccessToken string `json:"access_token"`
}

func login(email, password string) (*Account, error) {
	body, _ := json.Marshal(map[string]string{
		"email":    email,
		"password": password,
	})

	resp, err := http.Post(apiBase+"/auth/login", "application/json", bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("login failed (%d): %s", resp.StatusCode, string(bodyBytes))
	}

	var result loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode failed: %w", err)
	}

	return &Account{
		Email:    email,
		Password: password,
		Role:     result.User.Role,
		Token:    result.AccessToken,
		UserID:   result.User.ID,
	}, nil
}

func registerMember(email, password, firstName string) (*Account, error) {
	body, _ := json.Marshal(map[string]string{
		"email":     email,
		"password":  password,
		"firstName": firstName,
	})

	resp, err := http.Post(apiBase+"/auth/register", "application/json", bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("registration failed (%d): %s", resp.StatusCode, string(bodyBytes))
	}

	var result loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode failed: %w", err)
	}

	return &Account{
		Email:    email,
		Password: password,
		Role:     result.User.Role,
		Token:    result.AccessToken,
		UserID:   result.User.ID,
	}, nil
}

func provisionAccount(adminToken, email, password, firstName, role string) (*Account, error) {
	body, _ := json.Marshal(map[string]string{
		"email":     email,
		"password":  password,
		"firstName": firstName,
		"role":      role,
	})

	req, _ := http.NewRequest("POST", apiBase+"/admin/users", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+adminToken)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	// 409 means the account survived an earlier seed run; just log in again.
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusConflict {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("provision failed (%d): %s", resp.StatusCode, string(bodyBytes))
	}

	return login(email, password)
}

func createClass(token, title, category string, startsAt time.Time, capacity int) (*Class, error) {
	body, _ := json.Marshal(map[string]interface{}{
		"title":           title,
		"category":        category,
		"startsAt":        startsAt.Format(time.RFC3339),
		"durationMinutes": 60,
		"capacity":        capacity,
	})

	req, _ := http.NewRequest("POST", apiBase+"/classes", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("create class failed (%d): %s", resp.StatusCode, string(bodyBytes))
	}

	var result Class
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode failed: %w", err)
	}

	return &result, nil
}

func enroll(token, classID string) error {
	req, _ := http.NewRequest("POST", apiBase+"/classes/"+classID+"/enroll", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	// 409 Conflict (already enrolled or full) is fine for seeding
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusConflict {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("enroll failed (%d): %s", resp.StatusCode, string(bodyBytes))
	}

	return nil
}

func generateEmail(prefix string, index int) string {
	const letters = "abcdefghijklmnopqrstuvwxyz0123456789"
	random := make([]byte, 4)
	for i := range random {
		random[i] = letters[rand.Intn(len(letters))]
	}
	return fmt.Sprintf("%s_%d_%s@seed.fitstudio.local", prefix, index, string(random))
}

func main() {
	rand.Seed(time.Now().UnixNano())

	adminEmail := os.Getenv("SEED_ADMIN_EMAIL")
	adminPassword := os.Getenv("SEED_ADMIN_PASSWORD")
	if adminEmail == "" || adminPassword == "" {
		fmt.Fprintln(os.Stderr, "SEED_ADMIN_EMAIL and SEED_ADMIN_PASSWORD must point at an existing admin account")
		os.Exit(1)
	}

	fmt.Println("Seeding demo studio data...")

	fmt.Println("\nLogging in as admin...")
	admin, err := login(adminEmail, adminPassword)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Admin login failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("  ✓ Admin: %s\n", admin.Email)

	password := "demopassword123"

	// Provision staff accounts through the admin API
	fmt.Println("\nProvisioning staff...")
	var instructors []*Account
	for i := 1; i <= 2; i++ {
		instructor, err := provisionAccount(admin.Token, generateEmail("coach", i), password, fmt.Sprintf("Coach%d", i), "instructor")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to provision instructor %d: %v\n", i, err)
			os.Exit(1)
		}
		instructors = append(instructors, instructor)
		fmt.Printf("  ✓ Instructor: %s\n", instructor.Email)
	}

	contentAdmin, err := provisionAccount(admin.Token, generateEmail("content", 1), password, "Content", "content_admin")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to provision content admin: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("  ✓ Content admin: %s\n", contentAdmin.Email)

	// Each instructor publishes a small schedule
	fmt.Println("\nCreating classes...")
	categories := []string{"yoga", "strength", "cardio", "pilates"}
	var classes []*Class
	for i, instructor := range instructors {
		for j := 0; j < 2; j++ {
			title := fmt.Sprintf("%s Session %d", categories[(i*2+j)%len(categories)], j+1)
			startsAt := time.Now().Add(time.Duration(24*(i*2+j+1)) * time.Hour)
			class, err := createClass(instructor.Token, title, categories[(i*2+j)%len(categories)], startsAt, 8)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Failed to create class: %v\n", err)
				os.Exit(1)
			}
			classes = append(classes, class)
			fmt.Printf("  ✓ %s\n", class.Title)
		}
	}

	// Register members through the public flow and spread them across classes
	fmt.Println("\nRegistering members...")
	var members []*Account
	for i := 1; i <= 6; i++ {
		member, err := registerMember(generateEmail("member", i), password, fmt.Sprintf("Member%d", i))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to register member %d: %v\n", i, err)
			os.Exit(1)
		}
		members = append(members, member)
		fmt.Printf("  ✓ Member: %s\n", member.Email)
	}

	fmt.Println("\nEnrolling members...")
	for i, member := range members {
		class := classes[i%len(classes)]
		if err := enroll(member.Token, class.ID); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to enroll member %d: %v\n", i+1, err)
			os.Exit(1)
		}
		fmt.Printf("  ✓ %s -> %s\n", member.Email, class.Title)
	}

	fmt.Println("\n" + "============================================================")
	fmt.Println("DEMO DATA SEEDED")
	fmt.Println("============================================================")

	fmt.Printf("\nAll seeded accounts use password: %s\n", password)
	fmt.Println("\nStaff:")
	for _, instructor := range instructors {
		fmt.Printf("  instructor:    %s\n", instructor.Email)
	}
	fmt.Printf("  content_admin: %s\n", contentAdmin.Email)
	fmt.Println("\nMembers:")
	for _, member := range members {
		fmt.Printf("  %s\n", member.Email)
	}

	fmt.Println("\nDashboards after login at http://localhost:8080/auth/login:")
	fmt.Println("  admin         -> /admin")
	fmt.Println("  content_admin -> /content-admin")
	fmt.Println("  instructor    -> /instructor")
	fmt.Println("  member        -> /dashboard")

	// Output JSON for programmatic use
	output := map[string]interface{}{
		"instructors":  instructors,
		"contentAdmin": contentAdmin,
		"members":      members,
		"classes":      classes,
	}

	fmt.Println("\n" + "============================================================")
	fmt.Println("JSON OUTPUT (for scripts):")
	fmt.Println("============================================================")
	jsonOutput, _ := json.MarshalIndent(output, "", "  ")
	fmt.Println(string(jsonOutput))
}
