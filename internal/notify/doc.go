// Package notify emails buying-opportunity alerts over SMTP.
package notify
