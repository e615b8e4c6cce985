package local

// webmailDomains are free consumer mailbox providers
var webmailDomains = setOf(
	// Google
	"gmail.com", "googlemail.com",
	// Microsoft
	"outlook.com", "hotmail.com", "hotmail.co.uk", "hotmail.fr", "hotmail.de",
	"live.com", "live.co.uk", "msn.com",
	// Yahoo
	"yahoo.com", "yahoo.co.uk", "yahoo.fr", "yahoo.de", "yahoo.co.in", "yahoo.ca",
	"yahoo.com.au", "ymail.com", "rocketmail.com",
	// AOL/Verizon
	"aol.com", "aim.com", "verizon.net",
	// Apple
	"icloud.com", "me.com", "mac.com",
	// Privacy-focused
	"protonmail.com", "protonmail.ch", "proton.me", "pm.me", "tutanota.com", "tuta.io",
	// Others
	"zoho.com", "mail.com", "email.com", "gmx.com", "gmx.net", "gmx.de", "web.de",
	"yandex.com", "yandex.ru", "mail.ru", "qq.com", "163.com", "126.com",
	"comcast.net", "att.net",
)

// disposableDomains are throwaway mailbox services
var disposableDomains = setOf(
	"mailinator.com", "guerrillamail.com", "guerrillamail.net", "sharklasers.com",
	"10minutemail.com", "10minutemail.net", "temp-mail.org", "tempmail.com",
	"tempmailo.com", "throwawaymail.com", "yopmail.com", "yopmail.net",
	"trashmail.com", "getnada.com", "nada.email", "dispostable.com", "maildrop.cc",
	"mintemail.com", "mohmal.com", "fakeinbox.com", "emailondeck.com",
	"spamgourmet.com", "mailnesia.com", "mytemp.email", "tempr.email",
	"discard.email", "burnermail.io", "inboxkitten.com", "moakt.com", "mailcatch.com",
	"spam4.me", "grr.la", "33mail.com", "tempinbox.com", "getairmail.com",
	"mailpoof.com", "emailfake.com", "crazymailing.com", "harakirimail.com",
)

// rolePrefixes are local parts that belong to a function rather than a person
var rolePrefixes = setOf(
	"admin", "administrator", "billing", "contact", "help", "hello", "info",
	"marketing", "noreply", "no-reply", "office", "postmaster", "sales", "support",
	"team", "webmaster",
)

func setOf(items ...string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		set[item] = true
	}
	return set
}
