package json

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path"
	"reflect"
	"sync"

	"github.com/drakos74/grid-coin/internal/storage"
)

const (
	filename = "events.log"
)

// Registry appends values as json lines under <root>/<pair>/<label>/events.log
type Registry struct {
	root string
	lock *sync.Mutex
}

// NewRegistry creates a new registry at the given root.
func NewRegistry(root string) *Registry {
	return &Registry{
		root: root,
		lock: new(sync.Mutex),
	}
}

func (e *Registry) filePath(k storage.K) string {
	return path.Join(e.root, k.Pair, k.Label)
}

// Put appends the value to the log of the given key.
func (e *Registry) Put(k storage.K, value interface{}) error {
	e.lock.Lock()
	defer e.lock.Unlock()

	filePath := e.filePath(k)

	// check if filepath exists
	info, err := os.Stat(filePath)
	if err != nil {
		err := os.MkdirAll(filePath, os.ModePerm)
		if err != nil {
			return fmt.Errorf("could not make dir: %s: %w", filePath, err)
		}
	} else if !info.IsDir() {
		return fmt.Errorf("path given is not a directory: %s", filePath)
	}

	b, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("could not encode value '%+v': %w", value, err)
	}
	f, err := os.OpenFile(path.Join(filePath, filename), os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0600)
	if err != nil {
		return fmt.Errorf("could not open log file: %w", err)
	}

	defer f.Close()

	if _, err = f.Write(append(b, '\n')); err != nil {
		return fmt.Errorf("could not write log file for '%+v': %w", k, err)
	}
	return nil
}

// GetAll decodes all values of the given key into the slice pointed to by values.
func (e *Registry) GetAll(k storage.K, values interface{}) error {
	e.lock.Lock()
	defer e.lock.Unlock()

	vv := reflect.ValueOf(values)
	if vv.Kind() != reflect.Ptr || vv.Elem().Kind() != reflect.Slice {
		return fmt.Errorf("only accepting pointers to slices as placeholder for the results")
	}
	slice := vv.Elem()
	t := slice.Type().Elem()

	fileName := path.Join(e.filePath(k), filename)
	f, err := os.Open(fileName)
	if err != nil {
		return fmt.Errorf("could not read file '%s': %v: %w", fileName, err, storage.NotFoundErr)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		instance := reflect.New(t)
		if err := json.Unmarshal(line, instance.Interface()); err != nil {
			return fmt.Errorf("could not decode event value '%s': %v: %w", string(line), err, storage.CouldNotLoadErr)
		}
		slice = reflect.Append(slice, instance.Elem())
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("could not scan '%s': %w", fileName, err)
	}
	vv.Elem().Set(slice)
	return nil
}
