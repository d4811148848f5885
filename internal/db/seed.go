package db

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var seedBios = []string{
	"Weekend hiker, weekday coffee snob. Ask me about trails.",
	"Board games, bad puns and homemade ramen.",
	"hi",
	"",
	"Runner training for my first marathon this autumn.",
}

// SeedTestData resets the database and populates it with demo data.
//
// Behavior:
//  1. Clears existing rows of every matching table.
//  2. Creates 2 groups and 20 users (10 male, 10 female) with hashed passwords.
//  3. Enrolls every user in group 1 and every other user in group 2.
//  4. Generates likes inside group 1; every 3rd like is made reciprocal and
//     gets its ACTIVE match row.
//
// Compatible with MySQL, Postgres and SQLite.
func SeedTestData(db *gorm.DB) error {
	r := rand.New(rand.NewSource(time.Now().UnixNano()))
	now := time.Now().UTC()

	// --- Fresh start ---
	for _, table := range []string{"match_reports", "messages", "matches", "likes", "group_memberships", "member_groups", "users"} {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	log.Println("Cleared existing data")

	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	groups := []Group{{Name: "climbing-club"}, {Name: "book-circle"}}
	if err := db.Create(&groups).Error; err != nil {
		return fmt.Errorf("failed to seed groups: %w", err)
	}

	// --- Seed Users (10 male, 10 female) ---
	users := make([]User, 0, 20)
	for i := 1; i <= 20; i++ {
		gender := "male"
		if i > 10 {
			gender = "female"
		}
		age := 20 + r.Intn(20)
		bio := seedBios[r.Intn(len(seedBios))]
		u := User{
			Username:     fmt.Sprintf("user%d", i),
			PasswordHash: string(hash),
			Nickname:     fmt.Sprintf("member%d", i),
			Age:          &age,
			Gender:       &gender,
			Credits:      10,
			IsPremium:    i%7 == 0,
			LastActive:   now.Add(-time.Duration(r.Intn(120)) * time.Hour),
		}
		if bio != "" {
			u.Bio = &bio
		}
		if i%2 == 0 {
			img := fmt.Sprintf("https://cdn.example.com/avatars/%d.jpg", i)
			u.ProfileImage = &img
		}
		users = append(users, u)
	}
	if err := db.Create(&users).Error; err != nil {
		return fmt.Errorf("failed to seed users: %w", err)
	}
	log.Println("Seeded 20 users.")

	// --- Memberships ---
	memberships := make([]GroupMembership, 0, 30)
	for i, u := range users {
		memberships = append(memberships, GroupMembership{UserID: u.ID, GroupID: groups[0].ID, Status: MembershipActive})
		if i%2 == 0 {
			memberships = append(memberships, GroupMembership{UserID: u.ID, GroupID: groups[1].ID, Status: MembershipActive})
		}
	}
	if err := db.Create(&memberships).Error; err != nil {
		return fmt.Errorf("failed to seed memberships: %w", err)
	}

	// --- Likes in group 1 ---
	groupID := groups[0].ID
	counter := 0
	for _, actor := range users {
		for j := 0; j < 4; j++ {
			target := users[r.Intn(len(users))]
			if target.ID == actor.ID || *target.Gender == *actor.Gender {
				continue
			}

			mutual := counter%3 == 0
			createdAt := now.Add(-time.Duration(r.Intn(72)) * time.Hour)

			like := Like{FromUserID: actor.ID, ToUserID: target.ID, GroupID: groupID, IsMatch: mutual, CreatedAt: createdAt}
			if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&like).Error; err != nil {
				return fmt.Errorf("failed to seed like: %w", err)
			}

			if mutual {
				back := Like{FromUserID: target.ID, ToUserID: actor.ID, GroupID: groupID, IsMatch: true, CreatedAt: createdAt}
				if err := db.Clauses(clause.OnConflict{
					Columns:   []clause.Column{{Name: "from_user_id"}, {Name: "to_user_id"}, {Name: "group_id"}},
					DoUpdates: clause.Assignments(map[string]any{"is_match": true}),
				}).Create(&back).Error; err != nil {
					return fmt.Errorf("failed to seed reciprocal like: %w", err)
				}
				// the forward like may already have existed without the flag
				db.Model(&Like{}).
					Where("from_user_id = ? AND to_user_id = ? AND group_id = ?", actor.ID, target.ID, groupID).
					Update("is_match", true)

				u1, u2 := Canonical(actor.ID, target.ID)
				live := true
				match := Match{User1ID: u1, User2ID: u2, GroupID: groupID, Live: &live, Status: MatchActive, CreatedAt: createdAt}
				if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&match).Error; err != nil {
					return fmt.Errorf("failed to seed match: %w", err)
				}
			}

			counter++
		}
	}
	log.Printf("Seeded %d likes.", counter)

	return nil
}
