package domain

import "time"

type User struct {
	ID           string    `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	FullName     string    `json:"fullName" db:"full_name"`
	Location     string    `json:"location" db:"location"`
	Rating       float64   `json:"rating" db:"rating"`
	MemberSince  time.Time `json:"memberSince" db:"member_since"`
}
