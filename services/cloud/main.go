// Service mirroring door state into Firestore, the document database the
// dashboard subscribes to.
//
// Retained 'door' events become the door_data/current_status document and
// 'doorday' aggregates become one document per date, so the dashboard's
// live view and history charts read straight from the collection.
package cloud

import (
	"context"
	"log"
	"time"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"github.com/pkg/errors"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/sourceclub/doormon/pubsub"
	"github.com/sourceclub/doormon/services"
	"github.com/sourceclub/doormon/util"
)

const (
	DefaultCollection = "door_data"
	writeTimeout      = 30 * time.Second
)

// Writer is the slice of the document database the service needs. Keeps
// Firestore out of the tests.
type Writer interface {
	SetDoc(ctx context.Context, id string, data map[string]interface{}) error
	Exists(ctx context.Context, id string) (bool, error)
}

type firestoreWriter struct {
	collection *firestore.CollectionRef
}

func (self *firestoreWriter) SetDoc(ctx context.Context, id string, data map[string]interface{}) error {
	_, err := self.collection.Doc(id).Set(ctx, data)
	return err
}

func (self *firestoreWriter) Exists(ctx context.Context, id string) (bool, error) {
	snap, err := self.collection.Doc(id).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return snap.Exists(), nil
}

// Service cloud
type Service struct {
	Writer Writer
}

// ID of the service
func (self *Service) ID() string {
	return "cloud"
}

func (self *Service) Init() error {
	services.WaitForConfig()
	conf := services.Config.Cloud
	ctx := context.Background()

	var opts []option.ClientOption
	if conf.Credentials != "" {
		opts = append(opts, option.WithCredentialsFile(util.ExpandUser(conf.Credentials)))
	}
	var fbconf *firebase.Config
	if conf.Project != "" {
		fbconf = &firebase.Config{ProjectID: conf.Project}
	}
	app, err := firebase.NewApp(ctx, fbconf, opts...)
	if err != nil {
		return errors.Wrap(err, "initialising firebase")
	}
	client, err := app.Firestore(ctx)
	if err != nil {
		return errors.Wrap(err, "connecting to firestore")
	}

	collection := conf.Collection
	if collection == "" {
		collection = DefaultCollection
	}
	self.Writer = &firestoreWriter{client.Collection(collection)}
	return nil
}

func (self *Service) updateStatus(ctx context.Context, ev *pubsub.Event) {
	data := map[string]interface{}{
		"isOpen":     ev.BoolField("isOpen"),
		"lastOpened": ev.IntField("lastOpened"),
		"lastClosed": ev.IntField("lastClosed"),
	}
	if err := self.Writer.SetDoc(ctx, "current_status", data); err != nil {
		log.Println("Error updating status:", err)
	}
}

func (self *Service) updateDay(ctx context.Context, ev *pubsub.Event) {
	date := ev.StringField("date")
	if date == "" {
		return
	}
	if ev.BoolField("final") {
		// a finalized day already uploaded isn't rewritten
		exists, err := self.Writer.Exists(ctx, date)
		if err != nil {
			log.Println("Error checking day:", err)
			return
		}
		if exists {
			log.Println("Day already uploaded:", date)
			return
		}
	}
	data := map[string]interface{}{
		"num_of_openings": ev.IntField("count"),
		"openings":        ev.Fields["openings"],
	}
	if err := self.Writer.SetDoc(ctx, date, data); err != nil {
		log.Println("Error uploading day:", err)
		return
	}
	log.Println("Uploaded day:", date)
}

// Event mirrors one bus event into the collection.
func (self *Service) Event(ev *pubsub.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	switch ev.Topic {
	case "door":
		self.updateStatus(ctx, ev)
	case "doorday":
		self.updateDay(ctx, ev)
	}
}

// Run the service
func (self *Service) Run() error {
	events := services.Subscriber.Subscribe(pubsub.Exact("door"), pubsub.Exact("doorday"))
	for ev := range events {
		self.Event(ev)
	}
	return nil
}
