package apperrors

import "fmt"

// Resource names the collection a message refers to, e.g. "ingredients".
type Resource string

const (
	ResourceIngredients Resource = "ingredients"
	ResourceMeals       Resource = "meals"
	ResourceTemplates   Resource = "mealTemplates"
	ResourceBudget      Resource = "budget"
	ResourceOnboarding  Resource = "preferences"
)

// ListenMessage is the banner shown when a live subscription on resource fails.
func ListenMessage(err error, resource Resource) string {
	switch Classify(err) {
	case KindNotSignedIn:
		return fmt.Sprintf("You must be signed in to view %s.", displayName(resource))
	case KindPermissionDenied:
		return fmt.Sprintf("Permission denied. Make sure Firestore rules allow access to users/{uid}/%s and are published.", resource)
	case KindUnavailable:
		return "Firestore is temporarily unavailable. Please try again in a moment."
	default:
		return fmt.Sprintf("Failed to load %s. Please try again.", displayName(resource))
	}
}

// WriteMessage is the banner shown when a write on resource fails.
// verb is the attempted action, e.g. "add ingredient" or "save budget".
func WriteMessage(err error, resource Resource, verb string) string {
	switch Classify(err) {
	case KindNotSignedIn:
		return fmt.Sprintf("You must be signed in to %s.", verb)
	case KindPermissionDenied:
		return fmt.Sprintf("Permission denied. Make sure Firestore rules allow writes to users/{uid}/%s.", resource)
	case KindUnavailable:
		return "Firestore is temporarily unavailable. Please try again in a moment."
	default:
		return fmt.Sprintf("Could not %s. Please try again.", verb)
	}
}

func displayName(r Resource) string {
	switch r {
	case ResourceTemplates:
		return "meal templates"
	case ResourceOnboarding:
		return "preferences"
	default:
		return string(r)
	}
}
