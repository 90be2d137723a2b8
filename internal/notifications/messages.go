package notifications

import "fmt"

const eventDateLayout = "2006-01-02 15:04"

type Message struct {
	To      string
	Subject string
	Body    string
}

func RegistrationConfirmationMessage(n Notice) Message {
	location := n.Location
	if location == "" {
		location = "None"
	}

	return Message{
		To:      n.Email,
		Subject: "Registration Confirmed: " + n.EventTitle,
		Body: fmt.Sprintf(
			"Hello %s,\n\n"+
				"You have successfully registered for the event:\n\n"+
				"Title: %s\n"+
				"Date: %s\n"+
				"Location: %s\n\n"+
				"See you there!\n"+
				"Event Management Team",
			n.Username, n.EventTitle, n.EventDate.UTC().Format(eventDateLayout), location,
		),
	}
}

func UnregistrationMessage(n Notice) Message {
	return Message{
		To:      n.Email,
		Subject: "Unregistered from: " + n.EventTitle,
		Body: fmt.Sprintf(
			"Hello %s,\n\n"+
				"You have been unregistered from the event:\n\n"+
				"Title: %s\n"+
				"Date: %s\n\n"+
				"We hope to see you at other events!\n"+
				"Event Management Team",
			n.Username, n.EventTitle, n.EventDate.UTC().Format(eventDateLayout),
		),
	}
}
