package constants

// APP_PACKAGES_ANDROID maps common app names accepted by launch_app to
// their Android package names. Anything not listed here is treated as
// a literal package name.
var APP_PACKAGES_ANDROID = map[string]string{
	"calculator": "com.google.android.calculator",
	"calendar":   "com.google.android.calendar",
	"camera":     "com.android.camera2",
	"chrome":     "com.android.chrome",
	"clock":      "com.google.android.deskclock",
	"contacts":   "com.google.android.contacts",
	"files":      "com.google.android.documentsui",
	"gmail":      "com.google.android.gm",
	"maps":       "com.google.android.apps.maps",
	"messages":   "com.google.android.apps.messaging",
	"phone":      "com.google.android.dialer",
	"photos":     "com.google.android.apps.photos",
	"playstore":  "com.android.vending",
	"settings":   "com.android.settings",
	"youtube":    "com.google.android.youtube",
}

// APP_PACKAGES_IOS maps common app names to their iOS bundle
// identifiers on the simulator.
var APP_PACKAGES_IOS = map[string]string{
	"appstore":  "com.apple.AppStore",
	"calendar":  "com.apple.mobilecal",
	"camera":    "com.apple.camera",
	"clock":     "com.apple.mobiletimer",
	"contacts":  "com.apple.MobileAddressBook",
	"facetime":  "com.apple.facetime",
	"health":    "com.apple.Health",
	"mail":      "com.apple.mobilemail",
	"maps":      "com.apple.Maps",
	"messages":  "com.apple.MobileSMS",
	"notes":     "com.apple.mobilenotes",
	"photos":    "com.apple.mobileslideshow",
	"reminders": "com.apple.reminders",
	"safari":    "com.apple.mobilesafari",
	"settings":  "com.apple.Preferences",
	"weather":   "com.apple.weather",
}
